// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mintkit/mintkit/internal/retry"
	"github.com/mintkit/mintkit/internal/toolchain"
)

const (
	// DefaultClusterURL is the mainnet-beta RPC endpoint.
	DefaultClusterURL = "https://api.mainnet-beta.solana.com"
	// DefaultProgramID is the Token-2022 program, which supports the metadata extension.
	DefaultProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	// DefaultMintPrefix is the vanity prefix ground for the mint address.
	DefaultMintPrefix = "To"
)

var (
	// ErrInvalidRequest is returned when a Request is missing a field.
	ErrInvalidRequest = errors.New("invalid provisioning request")

	// ErrEmptyAddress is returned when `solana address` prints nothing.
	ErrEmptyAddress = errors.New("wallet address is empty")
)

type (
	// Executor runs one external tool invocation. toolchain.Runner implements it.
	Executor interface {
		Run(ctx context.Context, name string, args ...string) (toolchain.Result, error)
	}

	// Policies holds the retry policy for each kind of step.
	Policies struct {
		Setup        retry.Policy
		Token        retry.Policy
		Account      retry.Policy
		MetadataInit retry.Policy
		FieldUpdate  retry.Policy
		Mint         retry.Policy
	}

	// Settings describe the cluster and local files provisioning works with.
	Settings struct {
		// ClusterURL is passed to `solana config set --url`.
		ClusterURL string
		// ProgramID is the token program used for create-token.
		ProgramID string
		// KeypairPath is the wallet keypair file passed to `solana config set -k`.
		KeypairPath string
		// MintPrefix is the vanity prefix for `solana-keygen grind --starts-with`.
		MintPrefix string
		// Dir is where solana-keygen writes the ground keypair, the
		// executor's working directory (toolchain.Runner.Dir).
		Dir string
		// Policies are the per-step retry policies.
		Policies Policies
	}

	// Request describes the token to create.
	Request struct {
		Name   string
		Symbol string
		// URI is the metadata document URL stored on chain.
		URI string
		// Amount is the supply to mint, in whole-token decimal notation.
		Amount string
	}

	// Identity is what provisioning learned about the token. It is returned
	// even on failure so callers can archive partial results.
	Identity struct {
		Wallet string
		// Mint is the mint address, the stem of MintKeypairPath.
		Mint            string
		MintKeypairPath string
		TokenAccount    string
		// Reached is the last state completed.
		Reached State
		// AlreadyDone lists states whose tool reported the work as done.
		AlreadyDone []State
	}

	// StepError reports the state whose transition failed.
	StepError struct {
		State State
		Err   error
	}

	// Option configures a Provisioner.
	Option func(*Provisioner)

	// Provisioner runs the provisioning sequence.
	Provisioner struct {
		exec     Executor
		settings Settings
		retrier  *retry.Retrier
		logger   *log.Logger
	}
)

// DefaultPolicies returns the retry budgets used when none are configured.
func DefaultPolicies() Policies {
	return Policies{
		Setup:        retry.Policy{Name: "setup", MaxAttempts: 1},
		Token:        retry.Policy{Name: "create token", MaxAttempts: 10, Delay: 5 * time.Second},
		Account:      retry.Policy{Name: "create account", MaxAttempts: 10, Delay: 5 * time.Second},
		MetadataInit: retry.Policy{Name: "initialize metadata", MaxAttempts: 10, Delay: 5 * time.Second},
		FieldUpdate:  retry.Policy{Name: "update metadata", MaxAttempts: 5, Delay: 2 * time.Second},
		Mint:         retry.Policy{Name: "mint", MaxAttempts: 10, Delay: 5 * time.Second},
	}
}

// DefaultSettings returns mainnet settings rooted at the working directory.
func DefaultSettings() Settings {
	return Settings{
		ClusterURL:  DefaultClusterURL,
		ProgramID:   DefaultProgramID,
		KeypairPath: "solana_keypair.json",
		MintPrefix:  DefaultMintPrefix,
		Dir:         ".",
		Policies:    DefaultPolicies(),
	}
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("provisioning stopped before %s: %v", e.State, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error { return e.Err }

// Validate checks that every field is set.
func (r Request) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", r.Name}, {"symbol", r.Symbol}, {"uri", r.URI}, {"amount", r.Amount},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// WithRetrier sets the retrier used for every step.
func WithRetrier(r *retry.Retrier) Option {
	return func(p *Provisioner) {
		if r != nil {
			p.retrier = r
		}
	}
}

// WithLogger sets the provisioner's logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Provisioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Provisioner that runs tools through exec.
func New(exec Executor, settings Settings, opts ...Option) *Provisioner {
	p := &Provisioner{
		exec:     exec,
		settings: settings,
		retrier:  retry.New(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives the sequence from CONFIG_SET to SUPPLY_MINTED. On failure the
// returned error is a *StepError and the Identity holds what was learned
// before the failing step.
func (p *Provisioner) Run(ctx context.Context, req Request) (Identity, error) {
	var id Identity
	if err := req.Validate(); err != nil {
		return id, err
	}

	for _, step := range p.Steps() {
		if err := ctx.Err(); err != nil {
			return id, &StepError{State: step.State, Err: err}
		}

		argv := step.command(p.settings, req, &id)
		p.logger.Info("provisioning", "state", step.State, "command", toolchain.CommandLine(argv[0], argv[1:]...))

		policy := step.Policy.WithShortCircuit(step.ShortCircuit)
		res, out, err := retry.DoValue(ctx, p.retrier, policy, func(ctx context.Context, _ int) (toolchain.Result, error) {
			res, err := p.exec.Run(ctx, argv[0], argv[1:]...)
			if errors.Is(err, toolchain.ErrToolNotFound) {
				return res, retry.Permanent(err)
			}
			return res, err
		})
		if err != nil {
			return id, &StepError{State: step.State, Err: err}
		}
		if step.complete != nil {
			if err := step.complete(p.settings, &id, res, out); err != nil {
				return id, &StepError{State: step.State, Err: err}
			}
		}

		id.Reached = step.State
		if out.ShortCircuited {
			id.AlreadyDone = append(id.AlreadyDone, step.State)
			p.logger.Info("already done", "state", step.State)
		}
	}

	p.logger.Info("token provisioned", "mint", id.Mint, "tokenAccount", id.TokenAccount)
	return id, nil
}
