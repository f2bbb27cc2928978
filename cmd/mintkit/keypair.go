// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/keypair"
)

// newKeypairCommand creates the `mintkit keypair` command.
func newKeypairCommand(app *App, opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "keypair",
		Short: "Write the wallet keypair file from WALLET_PRIVATE_KEY",
		Long: `Decode the base58 wallet secret key and write it as the JSON byte array the
Solana CLI reads. An existing file is overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeypair(cmd, app, opts, out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "keypair file to write (default is paths.keypair)")

	return cmd
}

func runKeypair(cmd *cobra.Command, app *App, opts *globalOptions, out string) error {
	cfg, verbose, err := app.loadConfig(cmd.Context(), opts)
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	secrets, err := app.Secrets(cfg.Paths.EnvFile)
	if err == nil {
		err = secrets.Require(config.WalletKeyVar)
	}
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	if out == "" {
		out = cfg.Paths.Keypair
	}

	key, err := keypair.Decode(secrets.WalletPrivateKey)
	if err == nil {
		err = keypair.Save(key, out)
	}
	if err != nil {
		return app.fail(cmd, err, verbose)
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Keypair written to"), LinkStyle.Render(out))
	return nil
}
