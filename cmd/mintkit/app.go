// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/pipeline"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives it and delegates through its service interfaces.
	App struct {
		Config      ConfigProvider
		Secrets     SecretsLoader
		NewPipeline PipelineFactory
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Secrets     SecretsLoader
		NewPipeline PipelineFactory
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// SecretsLoader reads credentials from a dotenv file and the environment.
	SecretsLoader func(envFile string) (*config.Secrets, error)

	// TokenRunner runs one token creation.
	TokenRunner interface {
		Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	}

	// PipelineFactory builds a TokenRunner from the loaded settings.
	PipelineFactory func(cfg *config.Config, secrets *config.Secrets, logger *log.Logger) (TokenRunner, error)
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Secrets == nil {
		deps.Secrets = config.LoadSecrets
	}
	if deps.NewPipeline == nil {
		deps.NewPipeline = defaultPipelineFactory
	}

	return &App{
		Config:      deps.Config,
		Secrets:     deps.Secrets,
		NewPipeline: deps.NewPipeline,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

func defaultPipelineFactory(cfg *config.Config, secrets *config.Secrets, logger *log.Logger) (TokenRunner, error) {
	return pipeline.FromConfig(cfg, secrets, pipeline.Deps{Logger: logger})
}

// loadConfig loads settings honoring the --config flag. Verbose output is
// enabled by either the flag or ui.verbose.
func (a *App) loadConfig(ctx context.Context, opts *globalOptions) (*config.Config, bool, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: opts.configPath})
	if err != nil {
		return nil, opts.verbose, err
	}
	return cfg, opts.verbose || cfg.UI.Verbose, nil
}

// newLogger returns the logger every component receives.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "mintkit",
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
