package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	multitenancyMiddleware "github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"

	"github.com/openkcm/tenancy/internal/api/write"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

var (
	ErrNoSubdomain   = errors.New("host carries no tenant subdomain")
	ErrNoPathTenant  = errors.New("tenant not found as path segment")
	ErrNoQueryTenant = errors.New("tenant not found as query parameter")
	ErrNoHeader      = errors.New("tenant not found in header")
)

// TenantGetters returns the tenant id extractors in the order they are
// tried: subdomain, path, query parameter, header.
func TenantGetters(cfg config.Tenancy) []func(r *http.Request) (string, error) {
	return []func(r *http.Request) (string, error){
		subdomainGetter(cfg),
		pathGetter,
		queryGetter,
		headerGetter,
	}
}

// InjectMultiTenancy stores the tenant id found in the request under the
// multitenancy tenant key. Requests without one are rejected.
func InjectMultiTenancy(cfg config.Tenancy) func(http.Handler) http.Handler {
	withTenantConfig := multitenancyMiddleware.DefaultWithTenantConfig
	withTenantConfig.TenantGetters = TenantGetters(cfg)
	withTenantConfig.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		write.Error(r.Context(), w, errs.Wrap(errs.ErrMissingTenantContext, err))
	}

	return multitenancyMiddleware.WithTenant(withTenantConfig)
}

// subdomainGetter reads the first label of a host under the base domain.
// Labels that are not tenant ids fall through to the next getter.
func subdomainGetter(cfg config.Tenancy) func(r *http.Request) (string, error) {
	baseDomain := strings.ToLower(strings.TrimPrefix(cfg.BaseDomain, "."))
	reserved := strings.ToLower(cfg.ReservedSubdomain)

	return func(r *http.Request) (string, error) {
		host := r.Host

		h, _, err := net.SplitHostPort(host)
		if err == nil {
			host = h
		}

		host = strings.ToLower(host)

		if !strings.Contains(host, ".") || net.ParseIP(host) != nil || host == baseDomain {
			return "", ErrNoSubdomain
		}

		if baseDomain != "" && !strings.HasSuffix(host, "."+baseDomain) {
			return "", ErrNoSubdomain
		}

		label, _, _ := strings.Cut(host, ".")
		if label == reserved || model.ValidateTenantID(label) != nil {
			return "", ErrNoSubdomain
		}

		return label, nil
	}
}

func pathGetter(r *http.Request) (string, error) {
	tenantID := r.PathValue(constants.TenantPathParam)
	if tenantID != "" {
		return tenantID, nil
	}

	rest, found := strings.CutPrefix(r.URL.Path, constants.TenantPathPrefix)
	if !found {
		return "", ErrNoPathTenant
	}

	tenantID, _, _ = strings.Cut(rest, "/")
	if tenantID == "" {
		return "", ErrNoPathTenant
	}

	return tenantID, nil
}

func queryGetter(r *http.Request) (string, error) {
	tenantID := r.URL.Query().Get(constants.TenantQueryParam)
	if tenantID == "" {
		return "", ErrNoQueryTenant
	}

	return tenantID, nil
}

func headerGetter(r *http.Request) (string, error) {
	tenantID := strings.TrimSpace(r.Header.Get(constants.TenantHeader))
	if tenantID == "" {
		return "", ErrNoHeader
	}

	return tenantID, nil
}

// BindTenantScope resolves the extracted tenant id against the registry and
// binds the scope of an active tenant to the request context.
func BindTenantScope(reg *registry.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tenantID, err := tenancyctx.ExtractTenantID(ctx)
			if err != nil {
				write.Error(ctx, w, errs.Wrap(errs.ErrMissingTenantContext, err))
				return
			}

			tenant, err := reg.Lookup(ctx, tenantID)
			if errors.Is(err, errs.ErrNotFound) {
				write.Error(ctx, w, errs.Wrap(errs.ErrUnknownTenant, err))
				return
			}

			if err != nil {
				write.Error(ctx, w, err)
				return
			}

			if !tenant.IsActive() {
				write.Error(ctx, w, errs.Wrapf(errs.ErrTenantNotActive, "tenant %s is %s", tenant.ID, tenant.Status))
				return
			}

			scope := tenancyctx.Scope{TenantID: tenant.ID, SchemaName: tenant.SchemaName}
			ctx = tenancyctx.BindScope(ctx, scope)
			ctx = log.InjectScope(ctx, scope)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
