package daemon

import (
	"net/http"
	"slices"
)

type ServeMux struct {
	httpServeMux http.ServeMux
	BaseURL      string
}

func NewServeMux(baseURL string) *ServeMux {
	return &ServeMux{
		httpServeMux: http.ServeMux{},
		BaseURL:      baseURL,
	}
}

func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServeMux.ServeHTTP(w, r)
}

// Handle registers handler for method and path below the base URL. The
// first middleware is the outermost one.
func (m *ServeMux) Handle(
	method, path string,
	handler http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) {
	for _, mw := range slices.Backward(middlewares) {
		handler = mw(handler)
	}

	m.httpServeMux.Handle(method+" "+m.BaseURL+path, handler)
}

func (m *ServeMux) HandleFunc(
	method, path string,
	handler func(http.ResponseWriter, *http.Request),
	middlewares ...func(http.Handler) http.Handler,
) {
	m.Handle(method, path, http.HandlerFunc(handler), middlewares...)
}
