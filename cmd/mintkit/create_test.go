// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/pinning"
	"github.com/mintkit/mintkit/internal/pipeline"
	"github.com/mintkit/mintkit/internal/provision"
	"github.com/mintkit/mintkit/internal/retry"
)

const testMint = "ToKen1111111111111111111111111111111111111"

func TestParseCreateArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr []error
	}{
		{
			name: "valid",
			args: []string{"Sample", "SMP", "logo.png", "1000", "A sample token"},
		},
		{
			name:    "blank name",
			args:    []string{"  ", "SMP", "logo.png", "1000", "d"},
			wantErr: []error{ErrInvalidTokenName},
		},
		{
			name:    "symbol with space",
			args:    []string{"Sample", "S M", "logo.png", "1000", "d"},
			wantErr: []error{ErrInvalidTokenSymbol},
		},
		{
			name:    "every invalid field is reported",
			args:    []string{"", "", "logo.png", "-5", "d"},
			wantErr: []error{ErrInvalidTokenName, ErrInvalidTokenSymbol, ErrInvalidMintAmount},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := parseCreateArgs(tt.args)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req.ImagePath != tt.args[2] || req.Description != tt.args[4] {
					t.Errorf("request = %+v", req)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error %v does not wrap %v", err, want)
				}
			}
		})
	}
}

func TestCreate_Success(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	h.runner.res = pipeline.Result{
		Upload: pinning.Upload{
			Image:    pinning.Result{GatewayURL: "https://gateway.example/ipfs/img"},
			Metadata: pinning.Result{GatewayURL: "https://gateway.example/ipfs/meta"},
		},
		Identity: provision.Identity{
			Wallet:       "Wa11et",
			Mint:         testMint,
			TokenAccount: "Acc0unt",
		},
		ArchiveDir:   "artifacts/Sample_20260101_000000",
		ExplorerURLs: pipeline.ExplorerURLs(testMint),
	}

	if err := h.run(t, "create", "Sample", "SMP", "logo.png", "1000", "A sample token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := h.stdout.String()
	for _, want := range []string{
		"Sample (SMP) created",
		"https://gateway.example/ipfs/meta",
		testMint,
		"https://solscan.io/token/" + testMint,
		"artifacts/Sample_20260101_000000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if h.stderr.Len() != 0 {
		t.Errorf("unexpected stderr: %q", h.stderr.String())
	}
}

func TestCreate_Failures(t *testing.T) {
	t.Parallel()

	t.Run("invalid arguments never reach the pipeline", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		err := h.run(t, "create", "Sample", "SMP", "logo.png", "zero", "d")

		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != ExitFailure {
			t.Fatalf("expected ExitError with code %d, got %v", ExitFailure, err)
		}
		if h.runner.got != (pipeline.Request{}) {
			t.Errorf("pipeline ran with %+v", h.runner.got)
		}
		if !strings.Contains(h.stderr.String(), "invalid mint amount") {
			t.Errorf("stderr missing cause: %q", h.stderr.String())
		}
	})

	t.Run("pipeline failure prints partial result", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		h.runner.res = pipeline.Result{
			Identity:     provision.Identity{Mint: testMint},
			ArchiveDir:   "artifacts/run",
			ExplorerURLs: pipeline.ExplorerURLs(testMint),
		}
		h.runner.err = &pipeline.StageError{
			Stage: pipeline.StageProvision,
			Err:   &retry.TerminalError{Operation: "mint", Attempts: 10, Err: errors.New("blockhash not found")},
		}

		err := h.run(t, "create", "Sample", "SMP", "logo.png", "1000", "d")

		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("expected ExitError, got %v", err)
		}
		if !strings.Contains(h.stdout.String(), "Sample (SMP) incomplete") {
			t.Errorf("stdout missing partial card: %q", h.stdout.String())
		}
		if !strings.Contains(h.stderr.String(), "blockhash not found") {
			t.Errorf("stderr missing cause: %q", h.stderr.String())
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		h.runner.err = &pipeline.StageError{
			Stage: pipeline.StageKeypair,
			Err:   &config.SecretNotFoundError{Names: []string{config.WalletKeyVar}},
		}

		if err := h.run(t, "create", "Sample", "SMP", "logo.png", "1000", "d"); err == nil {
			t.Fatal("expected error")
		}
		if h.stdout.Len() != 0 {
			t.Errorf("expected no result card, got %q", h.stdout.String())
		}
		if !strings.Contains(h.stderr.String(), config.WalletKeyVar) {
			t.Errorf("stderr missing variable name: %q", h.stderr.String())
		}
	})

	t.Run("archive failure is a warning", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t)
		h.runner.res = pipeline.Result{
			Identity:   provision.Identity{Mint: testMint},
			ArchiveErr: errors.New("disk full"),
		}

		if err := h.run(t, "create", "Sample", "SMP", "logo.png", "1000", "d"); err != nil {
			t.Fatalf("archive failure should not fail the command: %v", err)
		}
		if !strings.Contains(h.stderr.String(), "disk full") {
			t.Errorf("stderr missing archive warning: %q", h.stderr.String())
		}
	})
}

func TestRenderResult_Empty(t *testing.T) {
	t.Parallel()

	got := renderResult(pipeline.Request{Name: "Sample", Symbol: "SMP"}, pipeline.Result{}, errors.New("boom"))
	if got != "" {
		t.Errorf("renderResult() = %q, want empty", got)
	}
}
