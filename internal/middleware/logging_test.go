package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/internal/middleware"
	"github.com/openkcm/tenancy/internal/testutils"
)

func TestLoggingMiddleware(t *testing.T) {
	buf := testutils.SetupLoggerWithBuffer(t)

	handler := middleware.LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/tenants", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)

	for _, expected := range []string{
		"Received Request",
		"Request Completed",
		fmt.Sprintf("%d", http.StatusTeapot),
		"/tenants",
	} {
		assert.Contains(t, buf.String(), expected)
	}
}
