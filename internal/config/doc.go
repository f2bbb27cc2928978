// SPDX-License-Identifier: MPL-2.0

// Package config handles mintkit configuration using Viper with TOML as the file format.
//
// Settings are loaded from mintkit.toml in the working directory or from the
// user config directory (~/.config/mintkit/mintkit.toml on Linux,
// ~/Library/Application Support/mintkit on macOS, %APPDATA%\mintkit on
// Windows). Every key can be overridden with a MINTKIT_ environment variable,
// e.g. MINTKIT_CLUSTER_URL or MINTKIT_RETRY_MINT_MAX_ATTEMPTS.
//
// Secrets are kept apart from settings: LoadSecrets reads a dotenv file and
// the process environment into a Secrets value that is never written back to
// disk or shown by `mintkit config show`.
package config
