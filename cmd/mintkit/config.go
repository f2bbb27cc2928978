// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mintkit/mintkit/internal/config"
)

// newConfigCommand creates the `mintkit config` command group.
func newConfigCommand(app *App, opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, verbose, err := app.loadConfig(cmd.Context(), opts)
				if err != nil {
					return app.fail(cmd, err, verbose)
				}
				rendered, err := config.Render(cfg)
				if err != nil {
					return app.fail(cmd, err, verbose)
				}
				fmt.Fprint(app.stdout, rendered)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file that would be loaded",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, path, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: opts.configPath})
				if err != nil {
					return app.fail(cmd, err, opts.verbose)
				}
				if path == "" {
					fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no config file, using defaults)"))
					return nil
				}
				fmt.Fprintln(app.stdout, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration file",
			Long: `Write the built-in defaults to --config, or to mintkit.toml in the user
config directory. An existing file is never overwritten.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := opts.configPath
				if path == "" {
					var err error
					if path, err = config.DefaultPath(); err != nil {
						return app.fail(cmd, err, opts.verbose)
					}
				}
				if err := config.WriteDefault(path); err != nil {
					return app.fail(cmd, err, opts.verbose)
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), LinkStyle.Render(path))
				return nil
			},
		},
	)

	return cmd
}
