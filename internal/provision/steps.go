// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mintkit/mintkit/internal/retry"
	"github.com/mintkit/mintkit/internal/toolchain"
)

const (
	toolSolana  = "solana"
	toolKeygen  = "solana-keygen"
	toolSPL     = "spl-token"
	keypairExt  = ".json"
	creatingAcc = "Creating account "
)

// ErrNotFound is the sentinel error wrapped by NotFoundError.
var ErrNotFound = errors.New("generated mint keypair not found")

type (
	// Step is one transition of the sequence. State is the state reached
	// when the step completes.
	Step struct {
		State        State
		Policy       retry.Policy
		ShortCircuit retry.Predicate

		command  func(s Settings, req Request, id *Identity) []string
		complete func(s Settings, id *Identity, res toolchain.Result, out retry.Outcome) error
	}

	// NotFoundError is returned when solana-keygen grind left no keypair
	// file with the expected prefix.
	NotFoundError struct {
		Dir     string
		Pattern string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no file matching %q in %s", e.Pattern, e.Dir)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Steps returns the transition table in execution order.
func (p *Provisioner) Steps() []Step {
	pol := p.settings.Policies
	named := func(base retry.Policy, name string) retry.Policy {
		base.Name = name
		return base
	}

	return []Step{
		{
			State:  StateConfigSet,
			Policy: named(pol.Setup, "set cluster config"),
			command: func(s Settings, _ Request, _ *Identity) []string {
				return []string{toolSolana, "config", "set", "--url", s.ClusterURL, "-k", s.KeypairPath}
			},
		},
		{
			State:  StateAddressResolved,
			Policy: named(pol.Setup, "resolve wallet address"),
			command: func(Settings, Request, *Identity) []string {
				return []string{toolSolana, "address"}
			},
			complete: func(_ Settings, id *Identity, res toolchain.Result, _ retry.Outcome) error {
				if res.Stdout == "" {
					return ErrEmptyAddress
				}
				id.Wallet = res.Stdout
				return nil
			},
		},
		{
			State:  StateMintKeypairGenerated,
			Policy: named(pol.Setup, "generate mint keypair"),
			command: func(s Settings, _ Request, _ *Identity) []string {
				return []string{toolKeygen, "grind", "--starts-with", s.MintPrefix + ":1"}
			},
			complete: func(s Settings, id *Identity, _ toolchain.Result, _ retry.Outcome) error {
				path, err := FindMintKeypair(s.Dir, s.MintPrefix, s.KeypairPath)
				if err != nil {
					return err
				}
				id.MintKeypairPath = path
				id.Mint = MintAddress(path)
				return nil
			},
		},
		{
			State:        StateTokenCreated,
			Policy:       named(pol.Token, "create token"),
			ShortCircuit: toolchain.IsKind(toolchain.KindAddressInUse),
			command: func(s Settings, _ Request, id *Identity) []string {
				return []string{toolSPL, "--program-id", s.ProgramID, "create-token", "--enable-metadata", filepath.Base(id.MintKeypairPath)}
			},
		},
		{
			State:        StateAccountCreated,
			Policy:       named(pol.Account, "create token account"),
			ShortCircuit: toolchain.IsKind(toolchain.KindAccountExists),
			command: func(_ Settings, _ Request, id *Identity) []string {
				return []string{toolSPL, "create-account", id.Mint}
			},
			complete: func(_ Settings, id *Identity, res toolchain.Result, out retry.Outcome) error {
				if out.ShortCircuited {
					var cmdErr *toolchain.CommandError
					if errors.As(out.Matched, &cmdErr) {
						id.TokenAccount, _ = toolchain.ExtractExistingAccount(cmdErr.Stderr)
					}
					return nil
				}
				id.TokenAccount = createdAccount(res.Stdout)
				return nil
			},
		},
		{
			State:        StateMetadataInitialized,
			Policy:       named(pol.MetadataInit, "initialize metadata"),
			ShortCircuit: toolchain.IsKind(toolchain.KindExtensionInitialized),
			command: func(_ Settings, req Request, id *Identity) []string {
				return []string{toolSPL, "initialize-metadata", id.Mint, req.Name, req.Symbol, req.URI}
			},
		},
		{
			State:  StateNameUpdated,
			Policy: named(pol.FieldUpdate, "update name"),
			command: func(_ Settings, req Request, id *Identity) []string {
				return []string{toolSPL, "update-metadata", id.Mint, "name", req.Name}
			},
		},
		{
			State:  StateSymbolUpdated,
			Policy: named(pol.FieldUpdate, "update symbol"),
			command: func(_ Settings, req Request, id *Identity) []string {
				return []string{toolSPL, "update-metadata", id.Mint, "symbol", req.Symbol}
			},
		},
		{
			State:  StateURIUpdated,
			Policy: named(pol.FieldUpdate, "update uri"),
			command: func(_ Settings, req Request, id *Identity) []string {
				return []string{toolSPL, "update-metadata", id.Mint, "uri", req.URI}
			},
		},
		{
			State:  StateSupplyMinted,
			Policy: named(pol.Mint, "mint supply"),
			command: func(_ Settings, req Request, id *Identity) []string {
				return []string{toolSPL, "mint", id.Mint, req.Amount}
			},
		},
	}
}

// FindMintKeypair returns the newest "<prefix>*.json" file in dir, ignoring
// the wallet keypair file.
func FindMintKeypair(dir, prefix, walletKeypair string) (string, error) {
	pattern := prefix + "*" + keypairExt
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %q: %w", pattern, err)
	}

	var newest string
	var newestMod int64
	for _, m := range matches {
		if filepath.Base(m) == filepath.Base(walletKeypair) {
			continue
		}
		info, err := os.Stat(m)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %q: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	if newest == "" {
		return "", &NotFoundError{Dir: dir, Pattern: pattern}
	}
	return newest, nil
}

// MintAddress returns the mint address encoded in a ground keypair file name.
func MintAddress(path string) string {
	return strings.TrimSuffix(filepath.Base(path), keypairExt)
}

// createdAccount extracts the address from spl-token's
// "Creating account <address>" line.
func createdAccount(stdout string) string {
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, creatingAcc); ok {
			if fields := strings.Fields(rest); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}
