package responses

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
	"github.com/angelmondragon/tillbook-backend/pkg/types"
)

// requestIDHeader is set on the response by middleware.RequestID before any
// handler runs.
const requestIDHeader = "X-Request-Id"

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// retryAfter is advertised on retryable failures so tills back off before
// re-quoting.
const retryAfter = "1"

// WriteError renders err as the error envelope. Untyped errors become
// INTERNAL_ERROR; client-facing codes keep their own message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := classify(err)
	if err == nil {
		err = typed
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := types.APIError{
		Code:      string(typed.Code()),
		Message:   publicMessage(typed, meta),
		RequestID: w.Header().Get(requestIDHeader),
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}
	if meta.Retryable {
		w.Header().Set("Retry-After", retryAfter)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		switch {
		case meta.HTTPStatus >= http.StatusInternalServerError:
			logg.Error(ctx, "request.error", err)
		default:
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}

func classify(err error) *pkgerrors.Error {
	if err == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "nil error written")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
}

// publicMessage hides internal and dependency messages behind the code's
// public text.
func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if !meta.DetailsAllowed || typed.Message() == "" {
		return meta.PublicMessage
	}
	return typed.Message()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
