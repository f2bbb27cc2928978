// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mintkit/mintkit/internal/issue"
)

// issueStyle is the glamour style used for catalog entries.
const issueStyle = "dark"

// failureReport is what the user sees for a failed or degraded command: a
// styled one-line message and, when Issue is set, the catalog guidance.
type failureReport struct {
	Message string
	Issue   issue.Id
}

// render writes the message, then the catalog entry. A catalog entry that
// cannot be rendered is logged and skipped.
func (r failureReport) render(w io.Writer) {
	fmt.Fprint(w, r.Message)

	entry := issue.Get(r.Issue)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(issueStyle)
	if err != nil {
		log.Warn("cannot render issue", "issueID", r.Issue, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}
