// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/mintkit/mintkit/cmd/mintkit"

func main() {
	cmd.Execute()
}
