// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the mintkit command line interface.
//
// The root command accepts the token arguments directly, so
// `mintkit <name> <symbol> <image> <amount> <description>` is the same as
// `mintkit create ...`. Handlers receive an App and delegate to its
// configuration provider and pipeline factory, so tests can run every
// command without Pinata or the Solana tools.
package cmd
