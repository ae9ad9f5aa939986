package tenancy

import (
	"net/http"

	"github.com/openkcm/tenancy/internal/api/transform/namespace"
	"github.com/openkcm/tenancy/internal/api/write"
)

// The namespace endpoints run behind the tenant scope middleware, so the
// manager reads from the namespace bound to the request context.

func (c *APIController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, size, err := pageParams(r)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	users, pagination, err := c.Manager.ListUsers(ctx, page, size)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	data, err := namespace.ToPage(users, pagination, namespace.UserToAPI)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	write.Response(ctx, w, http.StatusOK, "Users retrieved", data)
}

func (c *APIController) ListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, size, err := pageParams(r)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	roles, pagination, err := c.Manager.ListRoles(ctx, page, size)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	data, err := namespace.ToPage(roles, pagination, namespace.RoleToAPI)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	write.Response(ctx, w, http.StatusOK, "Roles retrieved", data)
}

func (c *APIController) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, size, err := pageParams(r)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	logs, pagination, err := c.Manager.ListAuditLogs(ctx, page, size)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	data, err := namespace.ToPage(logs, pagination, namespace.AuditLogToAPI)
	if err != nil {
		write.Error(ctx, w, err)
		return
	}

	write.Response(ctx, w, http.StatusOK, "Audit logs retrieved", data)
}
