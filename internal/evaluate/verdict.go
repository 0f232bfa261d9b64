package evaluate

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Err returns the verdict's failure as an error matching the common sentinels, or nil for a
// Pass or itemized Mismatch.
func Err(v entity.Verdict) error {
	var sentinel error
	switch v.Kind {
	case constants.KindNone:
		return nil
	case constants.KindMissingOutput:
		sentinel = common.ErrMissingOutput
	case constants.KindInvalidStatus:
		sentinel = common.ErrInvalidStatus
	case constants.KindDegradedMismatch:
		sentinel = common.ErrDegradedMismatch
	case constants.KindNoJSONSpan:
		sentinel = common.ErrNoJSONSpan
	case constants.KindJSONSyntax:
		sentinel = common.ErrJSONSyntax
	case constants.KindTransport:
		sentinel = common.ErrTransport
	default:
		return common.NewAppError(string(v.Kind), truncate(v.Detail, 200), nil)
	}
	if v.Detail == "" {
		return fmt.Errorf("%s: %w", v.Invoice, sentinel)
	}
	return fmt.Errorf("%s: %w: %w", v.Invoice, sentinel, errors.New(truncate(v.Detail, 200)))
}
