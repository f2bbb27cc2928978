// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mintkit/mintkit/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mintkit [name symbol image amount description]",
		Short: "Create a Solana token with IPFS metadata in one step",
		Long: TitleStyle.Render("mintkit") + SubtitleStyle.Render(" - Solana token creation from an image and a few words") + `

mintkit fits your artwork onto a square canvas, pins it and its metadata to
IPFS through Pinata, creates a Token-2022 mint with on-chain metadata,
mints the supply and archives every artifact of the run.

` + SubtitleStyle.Render("Secrets (.env or environment):") + `
  WALLET_PRIVATE_KEY   base58 wallet secret key
  YOUR_PINATA_JWT      Pinata API token

` + SubtitleStyle.Render("Examples:") + `
  mintkit "Sample" SMP ./logo.png 1000000 "A sample token"
  mintkit create "Sample" SMP ./logo.png 1000000 "A sample token"
  mintkit keypair             Write solana_keypair.json from the secret
  mintkit config show         Show the effective configuration`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args) == createArgCount {
				return nil
			}
			return fmt.Errorf("expected %d arguments (name symbol image amount description), got %d", createArgCount, len(args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCreate(cmd, app, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./mintkit.toml, then the user config directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newCreateCommand(app, opts))
	rootCmd.AddCommand(newKeypairCommand(app, opts))
	rootCmd.AddCommand(newConfigCommand(app, opts))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := newRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
