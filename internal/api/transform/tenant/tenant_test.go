package tenant_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/api/transform/tenant"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/testutils"
	"github.com/openkcm/tenancy/utils/ptr"
)

func TestToAPI(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	tn := testutils.NewTenant(func(tn *model.Tenant) {
		tn.ID = "0a1b2c3d"
		tn.Status = model.TenantStatusActive
		tn.CreatedAt = created
		tn.UpdatedAt = created
		tn.Settings = nil
	})

	out, err := tenant.ToAPI(*tn)
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "0a1b2c3d", body["tenant_id"])
	assert.Equal(t, "tenant_0a1b2c3d", body["schema_name"])
	assert.Equal(t, "0a1b2c3d."+testutils.TestBaseDomain, body["domain_url"])
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, "2026-02-01T10:00:00Z", body["created_at"])
	assert.Equal(t, map[string]any{}, body["settings"])
	assert.NotContains(t, body, "deactivated_at")
}

func TestCreatedToAPI(t *testing.T) {
	res := &manager.CreateResult{
		Tenant: testutils.NewTenant(nil),
		AdminUser: manager.AdminUserSummary{
			ID:       uuid.New(),
			UserID:   "user_01234567",
			Username: "jane",
			Email:    "jane@acme.test",
			Role:     "super_admin",
			Status:   model.UserStatusActive,
		},
		SetupStatus: manager.SetupStatus{SchemaCreated: true, TablesCreated: true, AdminAccountActivated: true},
	}

	out, err := tenant.CreatedToAPI(res)
	require.NoError(t, err)
	assert.Equal(t, res.Tenant.ID, out.Tenant.TenantID)
	assert.Equal(t, "super_admin", out.AdminUser.Role)
	assert.True(t, out.SetupInstructions.AdminAccountActivated)
}

func TestFromRequests(t *testing.T) {
	create := tenant.FromCreateRequest(tenant.CreateRequest{
		Name:      "Acme",
		PlanType:  "pro",
		AdminUser: tenant.AdminUserRequest{Email: "jane@acme.test", Phone: ptr.PointTo("13800000000")},
	})
	assert.Equal(t, model.PlanTypePro, create.PlanType)
	assert.Equal(t, "13800000000", *create.AdminUser.Phone)

	update := tenant.FromUpdateRequest(tenant.UpdateRequest{PlanType: ptr.PointTo("enterprise")})
	require.NotNil(t, update.PlanType)
	assert.Equal(t, model.PlanTypeEnterprise, *update.PlanType)
	assert.Nil(t, update.Name)
}

func TestListToAPI(t *testing.T) {
	page := registry.Pagination{Page: 1, Size: 20, Total: 2, Pages: 1}

	out, err := tenant.ListToAPI([]*model.Tenant{testutils.NewTenant(nil), testutils.NewTenant(nil)}, page)
	require.NoError(t, err)
	assert.Len(t, out.Tenants, 2)
	assert.Equal(t, page, out.Pagination)
}
