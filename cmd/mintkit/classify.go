// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/mintkit/mintkit/internal/config"
	"github.com/mintkit/mintkit/internal/imagefit"
	"github.com/mintkit/mintkit/internal/issue"
	"github.com/mintkit/mintkit/internal/keypair"
	"github.com/mintkit/mintkit/internal/pinning"
	"github.com/mintkit/mintkit/internal/pipeline"
	"github.com/mintkit/mintkit/internal/provision"
	"github.com/mintkit/mintkit/internal/retry"
	"github.com/mintkit/mintkit/internal/toolchain"
)

// classifyError maps a failure to an issue catalog ID and returns a styled
// message for CLI rendering. An ID attached to an ActionableError wins; a
// zero ID means no catalog entry applies.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	styledMsg = fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	if entry, ok := issue.IssueOf(err); ok {
		return entry.Id(), styledMsg
	}

	var statusErr *pinning.StatusError
	var stageErr *pipeline.StageError

	switch {
	case errors.Is(err, config.ErrSecretNotFound), errors.Is(err, pinning.ErrMissingToken):
		issueID = issue.SecretMissingId
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrInvalidLoadOptions):
		issueID = issue.ConfigLoadFailedId
	case errors.Is(err, keypair.ErrDecode), errors.Is(err, keypair.ErrMalformed):
		issueID = issue.WalletKeyInvalidId
	case errors.Is(err, imagefit.ErrLoad):
		issueID = issue.ImageLoadFailedId
	case errors.Is(err, toolchain.ErrToolNotFound):
		issueID = issue.ToolNotFoundId
	case errors.Is(err, provision.ErrNotFound):
		issueID = issue.MintKeypairNotFoundId
	case errors.Is(err, pipeline.ErrInvalidRequest),
		errors.Is(err, provision.ErrInvalidRequest),
		errors.Is(err, ErrInvalidTokenName),
		errors.Is(err, ErrInvalidTokenSymbol),
		errors.Is(err, ErrInvalidMintAmount):
		issueID = issue.InvalidTokenRequestId
	case errors.As(err, &statusErr) && !statusErr.Retryable():
		issueID = issue.PinataAuthFailedId
	case errors.As(err, &stageErr) && stageErr.Stage == pipeline.StageUpload:
		issueID = issue.PinningFailedId
	case errors.Is(err, retry.ErrTerminal):
		issueID = issue.RetriesExhaustedId
	}

	return issueID, styledMsg
}
