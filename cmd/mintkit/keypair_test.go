// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/keypair"
)

func TestKeypairCommand(t *testing.T) {
	t.Parallel()

	t.Run("writes the configured path", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		if err := h.run(t, "keypair"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		key, err := keypair.Load(h.cfg.Paths.Keypair)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if string(key) != "hello world" {
			t.Errorf("key = %q, want %q", key, "hello world")
		}
		if !strings.Contains(h.stdout.String(), h.cfg.Paths.Keypair) {
			t.Errorf("stdout missing path: %q", h.stdout.String())
		}
	})

	t.Run("out flag", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		out := filepath.Join(t.TempDir(), "keys", "wallet.json")
		if err := h.run(t, "keypair", "--out", out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := keypair.Load(out); err != nil {
			t.Errorf("Load(%q) error: %v", out, err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		h.secrets = &config.Secrets{PinataJWT: "jwt"}

		err := h.run(t, "keypair")
		if !errors.Is(err, config.ErrSecretNotFound) {
			t.Fatalf("expected ErrSecretNotFound, got %v", err)
		}
	})

	t.Run("invalid secret", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		h.secrets = &config.Secrets{WalletPrivateKey: "0OIl"}

		err := h.run(t, "keypair")
		if !errors.Is(err, keypair.ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})
}
