package handler

import (
	"context"
	"net/http"

	"github.com/garrettladley/shopsync/internal/apperr"
	"github.com/garrettladley/shopsync/internal/xerrors"
	"github.com/garrettladley/shopsync/internal/xhttp"
)

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	httpErr := toHTTPError(err)
	if httpErr.StatusCode == http.StatusMethodNotAllowed {
		xhttp.SetHeaderAllow(w, http.MethodPost)
	}
	xerrors.WriteError(ctx, w, httpErr)
}

// toHTTPError maps the pipeline taxonomy onto a status. Authentication and
// validation failures are 4xx. Storage failures are 5xx and their body
// carries no store detail.
func toHTTPError(err error) *xerrors.Error {
	e := apperr.As(err)
	if e == nil {
		return xerrors.Internal(xerrors.WithCause(err))
	}

	code := xerrors.WithCode(string(e.Reason))
	cause := xerrors.WithCause(e)

	switch e.Reason {
	case apperr.ReasonBadMethod:
		return xerrors.MethodNotAllowed(code, cause)
	case apperr.ReasonMissingSignature:
		return xerrors.Unauthorized(code, cause, xerrors.WithMessage("missing signature"))
	case apperr.ReasonBadSignature:
		return xerrors.Unauthorized(code, cause, xerrors.WithMessage("invalid signature"))
	case apperr.ReasonMalformedJSON:
		return xerrors.BadRequest(code, cause, xerrors.WithMessage("malformed JSON body"))
	case apperr.ReasonUnsupportedContentType:
		return xerrors.UnsupportedMedia(code, cause, xerrors.WithMessage("content type must be application/json"))
	case apperr.ReasonNoVariants:
		return xerrors.Validation(map[string]string{e.Field: "must contain at least one variant"}, code, cause,
			xerrors.WithMessage("invalid product"))
	case apperr.ReasonInvalidField:
		return xerrors.Validation(map[string]string{e.Field: fieldMessage(e)}, code, cause,
			xerrors.WithMessage("invalid product"))
	case apperr.ReasonMalformedMutation:
		return xerrors.Internal(code, cause)
	}

	if e.Kind == apperr.KindStorage {
		return xerrors.ServiceUnavailable(code, cause, xerrors.WithMessage("document store unavailable, retry later"))
	}
	return xerrors.Internal(code, cause)
}

func fieldMessage(e *apperr.Error) string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "invalid"
}
