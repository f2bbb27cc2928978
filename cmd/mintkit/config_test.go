// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mintkit/mintkit/internal/config"
)

func TestConfigShow(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	h.cfg.Cluster.MintPrefix = "Mk"

	if err := h.run(t, "config", "show"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "mint_prefix = 'Mk'") {
		t.Errorf("output missing mint prefix:\n%s", h.stdout.String())
	}
}

func TestConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "mintkit.toml")

	h := newTestHarness(t)
	if err := h.run(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	h = newTestHarness(t)
	err := h.run(t, "--config", path, "config", "init")
	if !errors.Is(err, config.ErrConfigExists) {
		t.Errorf("second init should fail with ErrConfigExists, got %v", err)
	}
}

func TestConfigPath_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mintkit.toml")
	if err := config.WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	h := newTestHarness(t)
	if err := h.run(t, "--config", path, "config", "path"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != path {
		t.Errorf("output = %q, want %q", h.stdout.String(), path)
	}
}
