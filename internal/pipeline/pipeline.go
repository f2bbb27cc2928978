// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mintkit/mintkit/internal/archive"
	"github.com/mintkit/mintkit/internal/clock"
	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/keypair"
	"github.com/mintkit/mintkit/internal/metadata"
	"github.com/mintkit/mintkit/internal/pinning"
	"github.com/mintkit/mintkit/internal/provision"
)

// Stages of a run, in order.
const (
	StageValidate  Stage = "validate"
	StageKeypair   Stage = "keypair"
	StageMetadata  Stage = "metadata"
	StageUpload    Stage = "upload"
	StageProvision Stage = "provision"
)

// ErrInvalidRequest is returned for a malformed Request.
var ErrInvalidRequest = errors.New("invalid token request")

type (
	// Stage names a pipeline step.
	Stage string

	// Request describes the token to create.
	Request struct {
		Name        string
		Symbol      string
		ImagePath   string
		Amount      string
		Description string
	}

	// Result is everything a run produced. It is filled in as far as the run
	// got, so it is meaningful alongside a non-nil error.
	Result struct {
		RunID          string
		KeypairCreated bool
		MetadataPath   string
		Upload         pinning.Upload
		Identity       provision.Identity
		ArchiveDir     string
		ArchiveErr     error
		ExplorerURLs   []string
	}

	// StageError reports which stage failed.
	StageError struct {
		Stage Stage
		Err   error
	}

	// Uploader pins the artwork and metadata. pinning.Uploader implements it.
	Uploader interface {
		Process(ctx context.Context, imagePath, metadataPath string) (pinning.Upload, error)
	}

	// Provisioner creates the token on chain. provision.Provisioner implements it.
	Provisioner interface {
		Run(ctx context.Context, req provision.Request) (provision.Identity, error)
	}

	// Archiver stores run artifacts. archive.Archiver implements it.
	Archiver interface {
		Archive(m archive.Manifest, extra ...string) (string, error)
	}

	// Settings are the local paths and secret a run needs.
	Settings struct {
		// KeypairPath is the wallet keypair file, created from WalletSecret
		// when missing.
		KeypairPath string
		// WalletSecret is the base58 wallet secret key.
		WalletSecret string
		// WorkDir receives the metadata document.
		WorkDir string
	}

	// Option configures a Pipeline.
	Option func(*Pipeline)

	// Pipeline composes the token creation stages.
	Pipeline struct {
		settings    Settings
		uploader    Uploader
		provisioner Provisioner
		archiver    Archiver
		clock       clock.Clock
		logger      *log.Logger
		newRunID    func() string
	}
)

// WithClock sets the clock used for run timestamps.
func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) { p.clock = clock.OrReal(c) }
}

// WithLogger sets the pipeline's logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRunIDFunc replaces the run id generator.
func WithRunIDFunc(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newRunID = fn
		}
	}
}

// New creates a Pipeline from its stages.
func New(settings Settings, up Uploader, prov Provisioner, arch Archiver, opts ...Option) *Pipeline {
	p := &Pipeline{
		settings:    settings,
		uploader:    up,
		provisioner: prov,
		archiver:    arch,
		clock:       clock.Real{},
		logger:      log.New(io.Discard),
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks the fields the user supplies on the command line.
func (r Request) Validate() error {
	var problems []string
	for _, f := range []struct{ name, value string }{
		{"name", r.Name},
		{"symbol", r.Symbol},
		{"image", r.ImagePath},
		{"description", r.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is empty")
		}
	}
	if n, err := strconv.ParseUint(strings.TrimSpace(r.Amount), 10, 64); err != nil || n == 0 {
		problems = append(problems, fmt.Sprintf("amount %q is not a positive whole number", r.Amount))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error { return e.Err }

// Run executes the stages in order and archives the artifacts whatever the
// outcome. The returned error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, req Request) (res Result, err error) {
	res.RunID = p.newRunID()
	started := p.clock.Now()
	logger := p.logger.With("runId", res.RunID)

	if err := req.Validate(); err != nil {
		return res, &StageError{Stage: StageValidate, Err: err}
	}

	defer func() {
		res.ExplorerURLs = ExplorerURLs(res.Identity.Mint)
		res.ArchiveDir, res.ArchiveErr = p.archive(req, res, err, started)
		if res.ArchiveErr != nil {
			logger.Warn("archiving incomplete", "dir", res.ArchiveDir, "error", res.ArchiveErr)
		} else {
			logger.Info("artifacts archived", "dir", res.ArchiveDir)
		}
	}()

	logger.Info("creating token", "name", req.Name, "symbol", req.Symbol, "amount", req.Amount)

	created, err := p.ensureKeypair()
	if err != nil {
		return res, &StageError{Stage: StageKeypair, Err: err}
	}
	res.KeypairCreated = created

	res.MetadataPath, err = metadata.Create(p.settings.WorkDir, metadata.Document{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
	})
	if err != nil {
		return res, &StageError{Stage: StageMetadata, Err: err}
	}
	logger.Debug("metadata written", "path", res.MetadataPath)

	res.Upload, err = p.uploader.Process(ctx, req.ImagePath, res.MetadataPath)
	if err != nil {
		return res, &StageError{Stage: StageUpload, Err: err}
	}
	logger.Info("metadata pinned", "url", res.Upload.Metadata.GatewayURL)

	res.Identity, err = p.provisioner.Run(ctx, provision.Request{
		Name:   req.Name,
		Symbol: req.Symbol,
		URI:    res.Upload.Metadata.GatewayURL,
		Amount: req.Amount,
	})
	if err != nil {
		return res, &StageError{Stage: StageProvision, Err: err}
	}

	logger.Info("token created", "mint", res.Identity.Mint, "tokenAccount", res.Identity.TokenAccount)
	return res, nil
}

func (p *Pipeline) ensureKeypair() (bool, error) {
	path := p.settings.KeypairPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && strings.TrimSpace(p.settings.WalletSecret) == "" {
		return false, &config.SecretNotFoundError{Names: []string{config.WalletKeyVar}}
	}

	created, err := keypair.Ensure(path, p.settings.WalletSecret)
	if err != nil {
		return false, err
	}
	if created {
		p.logger.Info("wallet keypair written", "path", path)
	} else {
		p.logger.Debug("wallet keypair found", "path", path)
	}
	return created, nil
}

func (p *Pipeline) archive(req Request, res Result, runErr error, started time.Time) (string, error) {
	m := archive.Manifest{
		RunID:       res.RunID,
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      archive.StatusSucceeded,
		StartedAt:   started,
		FinishedAt:  p.clock.Now(),
		Token: archive.Token{
			Wallet:              res.Identity.Wallet,
			Mint:                res.Identity.Mint,
			TokenAccount:        res.Identity.TokenAccount,
			ImageURL:            res.Upload.Image.GatewayURL,
			MetadataURL:         res.Upload.Metadata.GatewayURL,
			MetadataProtocolURL: res.Upload.Metadata.ProtocolURL,
		},
	}
	if res.Identity.Reached != provision.StateNone {
		m.Reached = res.Identity.Reached.String()
	}
	if runErr != nil {
		m.Status = archive.StatusFailed
		m.Error = runErr.Error()
	}

	var extra []string
	if res.Identity.MintKeypairPath != "" {
		extra = append(extra, res.Identity.MintKeypairPath)
	}
	return p.archiver.Archive(m, extra...)
}

// ExplorerURLs returns the Solana Explorer and Solscan pages for mint, or
// nil when mint is empty.
func ExplorerURLs(mint string) []string {
	if mint == "" {
		return nil
	}
	return []string{
		"https://explorer.solana.com/address/" + mint,
		"https://solscan.io/token/" + mint,
	}
}
