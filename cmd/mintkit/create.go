// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mintkit/mintkit/internal/issue"
	"github.com/mintkit/mintkit/internal/pipeline"
)

// createArgCount is the number of positional arguments a token needs.
const createArgCount = 5

// newCreateCommand creates the `mintkit create` command.
func newCreateCommand(app *App, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <symbol> <image> <amount> <description>",
		Short: "Create a token, pin its metadata and mint the supply",
		Long: `Create a Token-2022 mint whose on-chain metadata points at an IPFS
document describing the token and its artwork, then mint <amount> tokens to
the wallet. Every artifact of the run is archived, whether it succeeds or not.`,
		Example: `  mintkit create "Sample" SMP ./logo.png 1000000 "A sample token"`,
		Args:    cobra.ExactArgs(createArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, app, opts, args)
		},
	}
}

// parseCreateArgs validates the positional arguments and reports every
// invalid one.
func parseCreateArgs(args []string) (pipeline.Request, error) {
	name := TokenName(args[0])
	symbol := TokenSymbol(args[1])
	amount := MintAmount(args[3])

	if err := errors.Join(name.Validate(), symbol.Validate(), amount.Validate()); err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		Name:        name.String(),
		Symbol:      symbol.String(),
		ImagePath:   args[2],
		Amount:      amount.String(),
		Description: args[4],
	}, nil
}

func runCreate(cmd *cobra.Command, app *App, opts *globalOptions, args []string) error {
	req, err := parseCreateArgs(args)
	if err != nil {
		return app.fail(cmd, err, opts.verbose)
	}

	cfg, verbose, err := app.loadConfig(cmd.Context(), opts)
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	secrets, err := app.Secrets(cfg.Paths.EnvFile)
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	runner, err := app.NewPipeline(cfg, secrets, newLogger(app.stderr, verbose))
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	res, runErr := runner.Run(cmd.Context(), req)
	fmt.Fprint(app.stdout, renderResult(req, res, runErr))

	if res.ArchiveErr != nil {
		failureReport{
			Message: fmt.Sprintf("\n%s %v\n", WarningStyle.Render("Warning:"), res.ArchiveErr),
			Issue:   issue.ArchiveFailedId,
		}.render(app.stderr)
	}

	if runErr != nil {
		return app.fail(cmd, runErr, verbose)
	}
	return nil
}

// fail renders err with its catalog entry and returns the ExitError Cobra
// should propagate.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool) error {
	issueID, styled := classifyError(err, verbose)
	failureReport{Message: styled, Issue: issueID}.render(a.stderr)
	return exitFor(cmd, err)
}

// renderResult formats the summary card. A run that stopped before any
// address or URL was produced renders nothing.
func renderResult(req pipeline.Request, res pipeline.Result, runErr error) string {
	var rows []string
	add := func(label, value string) {
		if value == "" {
			return
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, resultLabelStyle.Render(label), LinkStyle.Render(value)))
	}

	add("Image", res.Upload.Image.GatewayURL)
	add("Metadata", res.Upload.Metadata.GatewayURL)
	add("Wallet", res.Identity.Wallet)
	add("Mint", res.Identity.Mint)
	add("Token account", res.Identity.TokenAccount)
	for _, u := range res.ExplorerURLs {
		add("Explorer", u)
	}
	add("Archive", res.ArchiveDir)

	if len(rows) == 0 {
		return ""
	}

	header := SuccessStyle.Render(fmt.Sprintf("%s (%s) created", req.Name, req.Symbol))
	if runErr != nil {
		header = ErrorStyle.Render(fmt.Sprintf("%s (%s) incomplete", req.Name, req.Symbol))
	}
	return resultCardStyle.Render(header+"\n"+strings.Join(rows, "\n")) + "\n"
}
