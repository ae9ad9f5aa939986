package daemon

import (
	"net/http"

	"github.com/openkcm/tenancy/internal/controllers/tenancy"
)

// RegisterRoutes binds the API. Namespace endpoints and the current tenant
// lookup run behind tenantScope.
func RegisterRoutes(mux *ServeMux, ctr *tenancy.APIController, tenantScope ...func(http.Handler) http.Handler) {
	mux.HandleFunc(http.MethodPost, "/tenants/register", ctr.RegisterTenant)
	mux.HandleFunc(http.MethodGet, "/tenants", ctr.ListTenants)
	mux.HandleFunc(http.MethodGet, "/tenants/{$}", ctr.ListTenants)
	mux.HandleFunc(http.MethodGet, "/tenants/me", ctr.GetCurrentTenant, tenantScope...)
	mux.HandleFunc(http.MethodGet, "/tenants/{tenantID}", ctr.GetTenant)
	mux.HandleFunc(http.MethodPut, "/tenants/{tenantID}", ctr.UpdateTenant)
	mux.HandleFunc(http.MethodDelete, "/tenants/{tenantID}", ctr.DeleteTenant)
	mux.HandleFunc(http.MethodPost, "/tenants/{tenantID}/suspend", ctr.SuspendTenant)
	mux.HandleFunc(http.MethodPost, "/tenants/{tenantID}/resume", ctr.ResumeTenant)

	mux.HandleFunc(http.MethodGet, "/tenant/{tenantID}/users", ctr.ListUsers, tenantScope...)
	mux.HandleFunc(http.MethodGet, "/tenant/{tenantID}/roles", ctr.ListRoles, tenantScope...)
	mux.HandleFunc(http.MethodGet, "/tenant/{tenantID}/audit-logs", ctr.ListAuditLogs, tenantScope...)
}
