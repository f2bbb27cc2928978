// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/mintkit/mintkit/internal/archive"
	"github.com/mintkit/mintkit/internal/clock"
	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/pinning"
	"github.com/mintkit/mintkit/internal/provision"
	"github.com/mintkit/mintkit/internal/retry"
	"github.com/mintkit/mintkit/internal/toolchain"
)

// toolDir is where the Solana tools run and where solana-keygen grind leaves
// the mint keypair.
const toolDir = "."

// Deps lets callers substitute the clock and the external tool runner.
type Deps struct {
	Clock  clock.Clock
	Logger *log.Logger
	// Exec overrides the Solana tool runner. It runs in the working directory.
	Exec provision.Executor
	// HTTPClient overrides the pinning HTTP client.
	HTTPClient *http.Client
}

// FromConfig builds a Pipeline backed by the real pinning client, Solana
// tools and archiver. The Pinata token must be set.
func FromConfig(cfg *config.Config, secrets *config.Secrets, deps Deps) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := secrets.Require(config.PinataJWTVar); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clk := clock.OrReal(deps.Clock)
	retrier := retry.New(retry.WithClock(clk), retry.WithLogger(logger))

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Pinata.Timeout.Std()}
	}
	client := pinning.NewClient(secrets.PinataJWT,
		pinning.WithHTTPClient(httpClient),
		pinning.WithEndpoints(pinning.Endpoints{
			PinFile: cfg.Pinata.FileEndpoint,
			PinJSON: cfg.Pinata.JSONEndpoint,
			Gateway: cfg.Pinata.Gateway,
		}),
		pinning.WithRetry(retrier, cfg.Retry.Pin.Policy("pin")),
		pinning.WithLogger(logger),
	)
	uploader := pinning.NewUploader(client,
		pinning.WithCanvasSize(cfg.Image.CanvasSize),
		pinning.WithUploaderLogger(logger),
	)

	runner := toolchain.NewRunner(toolchain.WithDir(toolDir), toolchain.WithLogger(logger))
	var exec provision.Executor = runner
	if deps.Exec != nil {
		exec = deps.Exec
	}
	prov := provision.New(exec, provision.Settings{
		ClusterURL:  cfg.Cluster.URL,
		ProgramID:   cfg.Cluster.ProgramID,
		KeypairPath: cfg.Paths.Keypair,
		MintPrefix:  cfg.Cluster.MintPrefix,
		Dir:         runner.Dir(),
		Policies: provision.Policies{
			Setup:        cfg.Retry.Setup.Policy("setup"),
			Token:        cfg.Retry.Token.Policy("create token"),
			Account:      cfg.Retry.Account.Policy("create account"),
			MetadataInit: cfg.Retry.MetadataInit.Policy("initialize metadata"),
			FieldUpdate:  cfg.Retry.FieldUpdate.Policy("update metadata"),
			Mint:         cfg.Retry.Mint.Policy("mint"),
		},
	}, provision.WithRetrier(retrier), provision.WithLogger(logger))

	arch := archive.New(cfg.Paths.ArchiveRoot, cfg.Paths.WorkDir,
		archive.WithClock(clk),
		archive.WithLogger(logger),
	)

	return New(Settings{
		KeypairPath:  cfg.Paths.Keypair,
		WalletSecret: secrets.WalletPrivateKey,
		WorkDir:      cfg.Paths.WorkDir,
	}, uploader, prov, arch, WithClock(clk), WithLogger(logger)), nil
}
