package middleware

import (
	"net/http"

	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

const RequestIDHeader = "X-Request-ID"

// InjectRequestID injects a RequestID into the context to be used by other middlewares
func InjectRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tenancyctx.InjectRequestID(r.Context())

			requestID, _ := tenancyctx.GetRequestID(ctx)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
