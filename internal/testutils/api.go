package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/controllers/tenancy"
	"github.com/openkcm/tenancy/internal/daemon"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/repo/sql"
)

const TestHost = "api." + TestBaseDomain

type TestAPIServerConfig struct {
	Config         config.Config
	ManagerOptions []manager.Option
}

// NewAPIServer creates the API handler over the given database connection.
// Passwords are hashed with the minimum cost to keep tests fast.
func NewAPIServer(
	tb testing.TB,
	db *multitenancy.DB,
	testCfg TestAPIServerConfig,
) (http.Handler, *manager.TenantManager) {
	tb.Helper()

	cfg := testCfg.Config
	if cfg.Tenancy.BaseDomain == "" {
		cfg.Tenancy = config.Tenancy{
			BaseDomain:        TestBaseDomain,
			ReservedSubdomain: "www",
			DefaultPageSize:   constants.DefaultPageSize,
			MaxPageSize:       constants.MaxPageSize,
		}
	}

	r := sql.NewRepository(db)
	opts := append([]manager.Option{manager.WithPasswordHashCost(bcrypt.MinCost)}, testCfg.ManagerOptions...)
	mgr := manager.NewTenantManager(r, cfg.Tenancy, opts...)

	return daemon.NewHandler(&cfg, registry.New(r), tenancy.NewAPIController(mgr)), mgr
}

type RequestOptions struct {
	Method   string // HTTP Method
	Endpoint string
	Host     string    // defaults to TestHost
	Body     io.Reader // Only need to be set for POST/PUT Methods. Used with the WithString and WithJSON methods
	Headers  map[string]string
}

// WithString is a helper function that converts a string to an io.Reader.
func WithString(tb testing.TB, i any) io.Reader {
	tb.Helper()

	str, ok := i.(string)
	if !ok {
		assert.Fail(tb, "Must provide a string")
	}

	return strings.NewReader(str)
}

// WithJSON marshals an object to JSON and returns an io.Reader.
func WithJSON(tb testing.TB, i any) io.Reader {
	tb.Helper()

	bs, err := json.Marshal(i)
	assert.NoError(tb, err)

	return bytes.NewReader(bs)
}

// GetJSONBody is used to get a response out of an HTTP Body encoded as JSON
// For error responses use write.ErrorEnvelope as it's type
func GetJSONBody[t any](tb testing.TB, w *httptest.ResponseRecorder) t {
	tb.Helper()

	var typ t

	err := json.Unmarshal(w.Body.Bytes(), &typ)
	assert.NoError(tb, err)

	return typ
}

// NewHTTPRequest builds an HTTP Request it sets default content-types for certain Methods
func NewHTTPRequest(tb testing.TB, opt RequestOptions) *http.Request {
	tb.Helper()

	r := httptest.NewRequestWithContext(tb.Context(), opt.Method, opt.Endpoint, opt.Body)

	r.Host = TestHost
	if opt.Host != "" {
		r.Host = opt.Host
	}

	switch opt.Method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost, http.MethodPut:
		r.Header.Set("Content-Type", "application/json")
	default:
		assert.Fail(tb, "HTTP Method not supported!")
	}

	for k, v := range opt.Headers {
		r.Header.Add(k, v)
	}

	return r
}

// MakeHTTPRequest creates an HTTP method and gets its response for it
func MakeHTTPRequest(tb testing.TB, server http.Handler, opt RequestOptions) *httptest.ResponseRecorder {
	tb.Helper()

	req := NewHTTPRequest(tb, opt)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	return w
}
