package tenancy

import (
	"net/http"

	"github.com/openkcm/tenancy/internal/api/transform/tenant"
	"github.com/openkcm/tenancy/internal/api/write"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/model"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

// RegisterTenant handles POST /tenants/register.
func (c *APIController) RegisterTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenant.CreateRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	res, err := c.Manager.CreateTenant(ctx, tenant.FromCreateRequest(req))
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	data, err := tenant.CreatedToAPI(res)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	write.Response(ctx, w, http.StatusCreated, "Tenant registered", data)
}

func (c *APIController) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := c.Manager.GetTenant(r.Context(), tenantIDParam(r))
	c.writeTenant(w, r, t, err, "Tenant retrieved")
}

// GetCurrentTenant returns the tenant bound to the request scope.
func (c *APIController) GetCurrentTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scope, err := tenancyctx.ExtractScope(ctx)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	t, err := c.Manager.GetTenant(ctx, scope.TenantID)
	c.writeTenant(w, r, t, err, "Tenant retrieved")
}

func (c *APIController) ListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, size, err := pageParams(r)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	q := r.URL.Query()

	tenants, pagination, err := c.Manager.ListTenants(ctx, manager.ListQuery{
		Page:     page,
		Size:     size,
		Status:   q.Get("status"),
		PlanType: q.Get("planType"),
		Search:   q.Get("search"),
	})
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	data, err := tenant.ListToAPI(tenants, pagination)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	write.Response(ctx, w, http.StatusOK, "Tenants retrieved", data)
}

func (c *APIController) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenant.UpdateRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	t, err := c.Manager.UpdateTenant(ctx, tenantIDParam(r), tenant.FromUpdateRequest(req))
	c.writeTenant(w, r, t, err, "Tenant updated")
}

// DeleteTenant soft deletes the tenant.
func (c *APIController) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	t, err := c.Manager.DeleteTenant(r.Context(), tenantIDParam(r))
	c.writeTenant(w, r, t, err, "Tenant deactivated")
}

func (c *APIController) SuspendTenant(w http.ResponseWriter, r *http.Request) {
	t, err := c.Manager.SuspendTenant(r.Context(), tenantIDParam(r))
	c.writeTenant(w, r, t, err, "Tenant suspended")
}

func (c *APIController) ResumeTenant(w http.ResponseWriter, r *http.Request) {
	t, err := c.Manager.ResumeTenant(r.Context(), tenantIDParam(r))
	c.writeTenant(w, r, t, err, "Tenant resumed")
}

func (c *APIController) writeTenant(
	w http.ResponseWriter,
	r *http.Request,
	t *model.Tenant,
	err error,
	message string,
) {
	ctx := r.Context()

	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	data, err := tenant.ToAPI(*t)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	write.Response(ctx, w, http.StatusOK, message, data)
}
