package pipeline

import (
	"context"
	"errors"

	"github.com/matzehuels/componentscope/pkg/design"
	apperrors "github.com/matzehuels/componentscope/pkg/errors"
	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/httputil"
	"github.com/matzehuels/componentscope/pkg/integrations"
)

// mapError attaches an error code to sentinel errors from the stages. Errors
// that already carry a code and context cancellation pass through unchanged.
func mapError(err error) error {
	if err == nil || apperrors.GetCode(err) != "" || errors.Is(err, context.Canceled) {
		return err
	}
	code, msg := apperrors.ErrCodeInternal, "analysis failed"
	switch {
	case errors.Is(err, design.ErrNoCanvas):
		code, msg = apperrors.ErrCodeNoCanvas, "the document has no canvases"
	case errors.Is(err, design.ErrCanvasOutOfRange):
		code, msg = apperrors.ErrCodeCanvasOutOfRange, "the selected canvas does not exist"
	case errors.Is(err, design.ErrNoDocument), errors.Is(err, hierarchy.ErrNilRoot):
		code, msg = apperrors.ErrCodeInvalidDocument, "the design file has no document"
	case errors.Is(err, hierarchy.ErrDanglingReference), errors.Is(err, hierarchy.ErrInvalidID):
		code, msg = apperrors.ErrCodeMalformedRecord, "the component hierarchy is inconsistent"
	case errors.Is(err, integrations.ErrNotFound):
		code, msg = apperrors.ErrCodeNotFound, "design file not found"
	case errors.Is(err, integrations.ErrUnauthorized):
		code, msg = apperrors.ErrCodeUnauthorized, "the access token was rejected"
	case errors.Is(err, integrations.ErrRateLimited):
		code, msg = apperrors.ErrCodeRateLimited, "the design API is rate limiting requests"
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = apperrors.ErrCodeTimeout, "the request timed out"
	case errors.Is(err, integrations.ErrNetwork):
		code, msg = apperrors.ErrCodeNetwork, "could not reach the design API"
	}
	wrapped := apperrors.Wrap(code, err, "%s", msg)
	var re *httputil.RetryableError
	if code == apperrors.ErrCodeRateLimited && errors.As(err, &re) {
		wrapped.RetryAfter = re.After
	}
	return wrapped
}
