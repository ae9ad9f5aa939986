package write

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openkcm/tenancy/internal/apierrors"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

// Envelope wraps every successful payload.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	Reason    string            `json:"reason"`
	Errors    []errs.FieldError `json:"errors"`
	RequestID string            `json:"request_id,omitempty"`
}

// Response writes data in the success envelope with the given status.
func Response(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	writeJSON(ctx, w, status, Envelope{
		Code:    status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes an error response to the client
func ErrorResponse(ctx context.Context, w http.ResponseWriter, apiErr *apierrors.APIError) {
	requestID, _ := tenancyctx.GetRequestID(ctx)

	writeJSON(ctx, w, apiErr.Status, ErrorEnvelope{
		Code:      apiErr.Status,
		Message:   apiErr.Message,
		Reason:    apiErr.Reason,
		Errors:    apiErr.Errors,
		RequestID: requestID,
	})
}

// Error maps err to its exposed form, logs it and writes it.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := apierrors.Transform(ctx, err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error(ctx, "Request failed", err)
	} else {
		log.Debug(ctx, "Request rejected",
			slog.String("reason", apiErr.Reason),
			slog.String("error", err.Error()),
		)
	}

	ErrorResponse(ctx, w, apiErr)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Error(ctx, "Failed to encode response", err)
	}
}
