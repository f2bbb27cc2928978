// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mintkit/mintkit/internal/issue"
)

func TestFailureReport_Render(t *testing.T) {
	t.Parallel()

	t.Run("message only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		failureReport{Message: "styled output\n"}.render(&buf)
		if buf.String() != "styled output\n" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("unknown issue is skipped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		failureReport{Message: "m\n", Issue: issue.Id(9999)}.render(&buf)
		if buf.String() != "m\n" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("catalog entry follows the message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		failureReport{Message: "styled output\n", Issue: issue.ToolNotFoundId}.render(&buf)

		out := buf.String()
		if !strings.HasPrefix(out, "styled output\n") {
			t.Errorf("message should come first: %q", out)
		}
		if len(out) <= len("styled output\n") {
			t.Error("expected the catalog entry to be rendered")
		}
	})
}
