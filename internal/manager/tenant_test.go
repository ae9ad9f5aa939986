package manager_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/internal/testutils"
	"github.com/openkcm/tenancy/utils/ptr"
)

var tenancyCfg = config.Tenancy{
	BaseDomain:           testutils.TestBaseDomain,
	DefaultPageSize:      constants.DefaultPageSize,
	MaxPageSize:          constants.MaxPageSize,
	IDGenerationAttempts: 3,
}

var newCreate = testutils.NewMutator(func() model.TenantCreate {
	return model.TenantCreate{
		Name:     "Acme Inc",
		PlanType: model.PlanTypeBasic,
		AdminUser: model.AdminUserCreate{
			FullName: "Jane Admin",
			Email:    "jane@acme.test",
			Password: "Sup3rSecret",
		},
	}
})

type fixture struct {
	db      *multitenancy.DB
	repo    repo.Repo
	mgr     *manager.TenantManager
	metrics *manager.Metrics
	reg     *prometheus.Registry
}

func newFixture(t *testing.T, opts ...manager.Option) fixture {
	t.Helper()

	db, _, _ := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(db)

	promReg := prometheus.NewRegistry()
	metrics, err := manager.NewMetrics(promReg)
	require.NoError(t, err)

	opts = append([]manager.Option{
		manager.WithMetrics(metrics),
		manager.WithPasswordHashCost(bcrypt.MinCost),
	}, opts...)

	return fixture{
		db:      db,
		repo:    r,
		mgr:     manager.NewTenantManager(r, tenancyCfg, opts...),
		metrics: metrics,
		reg:     promReg,
	}
}

func TestCreateTenant(t *testing.T) {
	f := newFixture(t)

	t.Run("Should create an active tenant with namespace and admin", func(t *testing.T) {
		res, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Domain = ptr.PointTo("acme.test")
			c.PlanType = model.PlanTypePro
		}))
		require.NoError(t, err)

		tenant := res.Tenant
		assert.Regexp(t, `^[0-9a-f]{8}$`, tenant.ID)
		assert.Equal(t, model.TenantStatusActive, tenant.Status)
		assert.Equal(t, "tenant_"+tenant.ID, tenant.SchemaName)
		assert.Equal(t, tenant.ID+"."+testutils.TestBaseDomain, tenant.DomainURL)
		assert.Equal(t, model.PlanTypePro.Limits().MaxUsers, tenant.MaxUsers)
		assert.JSONEq(t, `{}`, string(tenant.Settings))

		assert.True(t, res.SetupStatus.SchemaCreated)
		assert.True(t, res.SetupStatus.TablesCreated)
		assert.True(t, res.SetupStatus.AdminAccountActivated)

		assert.Equal(t, "jane", res.AdminUser.Username)
		assert.Equal(t, constants.RoleSuperAdmin, res.AdminUser.Role)
		assert.Regexp(t, `^user_[0-9a-f]{8}$`, res.AdminUser.UserID)

		ctx := testutils.ScopedContext(t.Context(), tenant.ID)

		user := &model.User{}
		found, err := f.repo.First(ctx, user, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(
			repo.NewCompositeKey().Where(repo.EmailField, "jane@acme.test"))))
		require.NoError(t, err)
		require.True(t, found)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("Sup3rSecret")))

		var links []*model.UserRole
		count, err := f.repo.List(ctx, &model.UserRole{}, &links, *repo.NewQuery())
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var logs []*model.AuditLog
		count, err = f.repo.List(ctx, &model.AuditLog{}, &logs, *repo.NewQuery())
		require.NoError(t, err)
		require.Equal(t, 1, count)
		assert.Equal(t, manager.AuditTenantCreated, logs[0].Action)
		assert.Equal(t, tenant.ID, logs[0].ResourceID)

		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Provisioning().WithLabelValues(manager.ResultSuccess)), 0)
	})

	t.Run("Should conflict on name", func(t *testing.T) {
		_, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Name = "ACME INC"
		}))
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.ErrorIs(t, err, registry.ErrNameTaken)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Provisioning().WithLabelValues(manager.ResultConflict)), 0)
	})

	t.Run("Should conflict on domain", func(t *testing.T) {
		_, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Name = "Other Inc"
			c.Domain = ptr.PointTo("ACME.test")
		}))
		assert.ErrorIs(t, err, registry.ErrDomainTaken)
	})

	t.Run("Should report every invalid field", func(t *testing.T) {
		_, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Name = "A"
			c.AdminUser.Email = "not-an-email"
		}))
		require.ErrorIs(t, err, errs.ErrValidation)

		fields := errs.FieldErrors(err)
		assert.Len(t, fields, 2)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Provisioning().WithLabelValues(manager.ResultInvalid)), 0)
	})

	t.Run("Should clip username derived from long email local part", func(t *testing.T) {
		local := strings.Repeat("j", 60)

		res, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Name = "Long Local Inc"
			c.AdminUser.Email = local + "@acme.test"
		}))
		require.NoError(t, err)

		assert.Equal(t, local[:50], res.AdminUser.Username)
		assert.Equal(t, local+"@acme.test", res.AdminUser.Email)
	})

	t.Run("Should reject overlong email before provisioning", func(t *testing.T) {
		_, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Name = "Overlong Mail Inc"
			c.AdminUser.Email = strings.Repeat("a", 64) + "@" + strings.Repeat("b", 186) + ".test"
		}))
		require.ErrorIs(t, err, errs.ErrValidation)
		assert.NotErrorIs(t, err, errs.ErrProvisioningFailure)

		exists, err := registry.New(f.repo).ExistsByName(t.Context(), "Overlong Mail Inc", "")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestCreateTenantRollback(t *testing.T) {
	t.Run("Should leave nothing behind when id generation is exhausted", func(t *testing.T) {
		f := newFixture(t, manager.WithIDGenerator(func() (string, error) {
			return "0000abcd", nil
		}))
		require.NoError(t, f.repo.MigrateNamespace(t.Context(), model.SchemaNameFor("0000abcd")))

		_, err := f.mgr.CreateTenant(t.Context(), newCreate(nil))
		assert.ErrorIs(t, err, manager.ErrGenerateTenantID)
		assert.ErrorIs(t, err, manager.ErrTenantIDCollision)
	})

	t.Run("Should roll back registry row and namespace on provisioning failure", func(t *testing.T) {
		f := newFixture(t, manager.WithIDGenerator(func() (string, error) {
			return "0000beef", nil
		}), manager.WithPasswordHashCost(bcrypt.MaxCost+1))

		_, err := f.mgr.CreateTenant(t.Context(), newCreate(nil))
		require.ErrorIs(t, err, errs.ErrProvisioningFailure)
		assert.ErrorIs(t, err, manager.ErrHashPassword)

		_, err = f.mgr.GetTenant(t.Context(), "0000beef")
		assert.ErrorIs(t, err, errs.ErrNotFound)

		exists, err := f.repo.NamespaceExists(t.Context(), model.SchemaNameFor("0000beef"))
		require.NoError(t, err)
		assert.False(t, exists)

		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Provisioning().WithLabelValues(manager.ResultFailure)), 0)
	})

	t.Run("Should propagate id generator errors", func(t *testing.T) {
		genErr := errors.New("entropy exhausted")
		f := newFixture(t, manager.WithIDGenerator(func() (string, error) {
			return "", genErr
		}))

		_, err := f.mgr.CreateTenant(t.Context(), newCreate(nil))
		assert.ErrorIs(t, err, genErr)
	})
}

func TestListTenants(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
			c.Name = name
		}))
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query manager.ListQuery
		total int
		size  int
		err   error
	}{
		{
			name:  "Should default page size",
			query: manager.ListQuery{},
			total: 3,
			size:  constants.DefaultPageSize,
		},
		{
			name:  "Should cap page size",
			query: manager.ListQuery{Size: 1000},
			total: 3,
			size:  constants.MaxPageSize,
		},
		{
			name:  "Should search by name",
			query: manager.ListQuery{Search: "amm"},
			total: 1,
			size:  constants.DefaultPageSize,
		},
		{
			name:  "Should filter by status",
			query: manager.ListQuery{Status: "suspended"},
			total: 0,
			size:  constants.DefaultPageSize,
		},
		{
			name:  "Should reject unknown status",
			query: manager.ListQuery{Status: "archived"},
			err:   errs.ErrValidation,
		},
		{
			name:  "Should reject unknown plan type",
			query: manager.ListQuery{PlanType: "gold"},
			err:   errs.ErrValidation,
		},
		{
			name:  "Should reject negative page",
			query: manager.ListQuery{Page: -1},
			err:   errs.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenants, page, err := f.mgr.ListTenants(t.Context(), tt.query)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, tenants, tt.total)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.size, page.Size)
		})
	}
}

func TestUpdateTenant(t *testing.T) {
	f := newFixture(t)

	first, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
		c.Name = "First"
		c.Domain = ptr.PointTo("first.test")
	}))
	require.NoError(t, err)

	second, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) {
		c.Name = "Second"
	}))
	require.NoError(t, err)

	t.Run("Should update present fields", func(t *testing.T) {
		tenant, err := f.mgr.UpdateTenant(t.Context(), second.Tenant.ID, model.TenantUpdate{
			Name:     ptr.PointTo("Second Renamed"),
			PlanType: ptr.PointTo(model.PlanTypeEnterprise),
			Settings: []byte(`{"theme":"dark"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, "Second Renamed", tenant.Name)

		stored, err := f.mgr.GetTenant(t.Context(), second.Tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second Renamed", stored.Name)
		assert.Equal(t, model.PlanTypeEnterprise, stored.PlanType)
		assert.JSONEq(t, `{"theme":"dark"}`, string(stored.Settings))
	})

	t.Run("Should keep own name without conflict", func(t *testing.T) {
		_, err := f.mgr.UpdateTenant(t.Context(), first.Tenant.ID, model.TenantUpdate{
			Name:   ptr.PointTo("First"),
			Domain: ptr.PointTo("FIRST.test"),
		})
		assert.NoError(t, err)
	})

	t.Run("Should conflict with other tenant", func(t *testing.T) {
		_, err := f.mgr.UpdateTenant(t.Context(), second.Tenant.ID, model.TenantUpdate{
			Domain: ptr.PointTo("first.test"),
		})
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.ErrorIs(t, err, registry.ErrDomainTaken)
	})

	t.Run("Should clear domain", func(t *testing.T) {
		_, err := f.mgr.UpdateTenant(t.Context(), first.Tenant.ID, model.TenantUpdate{
			Domain: ptr.PointTo(""),
		})
		require.NoError(t, err)

		stored, err := f.mgr.GetTenant(t.Context(), first.Tenant.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Domain)
	})

	t.Run("Should fail for unknown tenant", func(t *testing.T) {
		_, err := f.mgr.UpdateTenant(t.Context(), "ffffffff", model.TenantUpdate{Name: ptr.PointTo("Nobody")})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestTenantLifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, manager.WithClock(func() time.Time { return now }))

	res, err := f.mgr.CreateTenant(t.Context(), newCreate(nil))
	require.NoError(t, err)

	tenantID := res.Tenant.ID

	t.Run("Should suspend active tenant", func(t *testing.T) {
		tenant, err := f.mgr.SuspendTenant(t.Context(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, model.TenantStatusSuspended, tenant.Status)
	})

	t.Run("Should not suspend twice", func(t *testing.T) {
		_, err := f.mgr.SuspendTenant(t.Context(), tenantID)
		assert.ErrorIs(t, err, errs.ErrInvalidStatusTransition)
	})

	t.Run("Should resume suspended tenant", func(t *testing.T) {
		tenant, err := f.mgr.ResumeTenant(t.Context(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, model.TenantStatusActive, tenant.Status)
	})

	t.Run("Should refuse purge of active tenant", func(t *testing.T) {
		err := f.mgr.PurgeTenant(t.Context(), tenantID)
		assert.ErrorIs(t, err, manager.ErrPurgeNotInactive)
	})

	t.Run("Should soft delete tenant", func(t *testing.T) {
		tenant, err := f.mgr.DeleteTenant(t.Context(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, model.TenantStatusInactive, tenant.Status)

		stored, err := f.mgr.GetTenant(t.Context(), tenantID)
		require.NoError(t, err)
		require.NotNil(t, stored.DeactivatedAt)
		assert.True(t, now.Equal(stored.DeactivatedAt.UTC()))

		exists, err := f.repo.NamespaceExists(t.Context(), stored.SchemaName)
		require.NoError(t, err)
		assert.True(t, exists)

		var logs []*model.AuditLog
		_, err = f.repo.List(testutils.ScopedContext(t.Context(), tenantID), &model.AuditLog{}, &logs,
			*repo.NewQuery().Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Asc}))
		require.NoError(t, err)

		actions := make([]string, 0, len(logs))
		for _, l := range logs {
			actions = append(actions, l.Action)
		}

		assert.Equal(t, []string{
			manager.AuditTenantCreated,
			manager.AuditTenantSuspended,
			manager.AuditTenantResumed,
			manager.AuditTenantDeactivated,
		}, actions)
	})

	t.Run("Should not resume inactive tenant", func(t *testing.T) {
		_, err := f.mgr.ResumeTenant(t.Context(), tenantID)
		assert.ErrorIs(t, err, errs.ErrInvalidStatusTransition)
	})

	t.Run("Should purge inactive tenant and keep registry row", func(t *testing.T) {
		require.NoError(t, f.mgr.PurgeTenant(t.Context(), tenantID))

		exists, err := f.repo.NamespaceExists(t.Context(), model.SchemaNameFor(tenantID))
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = f.mgr.GetTenant(t.Context(), tenantID)
		assert.NoError(t, err)
		assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Purged()), 0)
	})
}

func TestPurgeExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := now.Add(-48 * time.Hour)
	f := newFixture(t, manager.WithClock(func() time.Time { return clock }))

	expired, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) { c.Name = "Expired" }))
	require.NoError(t, err)
	_, err = f.mgr.DeleteTenant(t.Context(), expired.Tenant.ID)
	require.NoError(t, err)

	clock = now
	recent, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) { c.Name = "Recent" }))
	require.NoError(t, err)
	_, err = f.mgr.DeleteTenant(t.Context(), recent.Tenant.ID)
	require.NoError(t, err)

	active, err := f.mgr.CreateTenant(t.Context(), newCreate(func(c *model.TenantCreate) { c.Name = "Active" }))
	require.NoError(t, err)

	purged, err := f.mgr.PurgeExpired(t.Context(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	for id, want := range map[string]bool{
		expired.Tenant.ID: false,
		recent.Tenant.ID:  true,
		active.Tenant.ID:  true,
	} {
		exists, err := f.repo.NamespaceExists(t.Context(), model.SchemaNameFor(id))
		require.NoError(t, err)
		assert.Equal(t, want, exists, id)
	}

	t.Run("Should skip already purged namespaces", func(t *testing.T) {
		purged, err := f.mgr.PurgeExpired(t.Context(), 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, purged)
	})
}

func TestRefreshStatusMetrics(t *testing.T) {
	f := newFixture(t)

	res, err := f.mgr.CreateTenant(t.Context(), newCreate(nil))
	require.NoError(t, err)
	_, err = f.mgr.SuspendTenant(t.Context(), res.Tenant.ID)
	require.NoError(t, err)

	counts, err := f.mgr.RefreshStatusMetrics(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.TenantStatusSuspended])
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ByStatus().WithLabelValues("suspended")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(f.metrics.ByStatus().WithLabelValues("active")), 0)
}

func TestNamespaceListings(t *testing.T) {
	f := newFixture(t)

	res, err := f.mgr.CreateTenant(t.Context(), newCreate(nil))
	require.NoError(t, err)

	ctx := testutils.ScopedContext(t.Context(), res.Tenant.ID)

	users, page, err := f.mgr.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "jane@acme.test", users[0].Email)
	assert.Equal(t, 1, page.Pages)

	roles, page, err := f.mgr.ListRoles(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)

	logs, _, err := f.mgr.ListAuditLogs(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	_, _, err = f.mgr.ListUsers(t.Context(), 1, 10)
	assert.ErrorIs(t, err, errs.ErrMissingTenantContext)

	_, _, err = f.mgr.ListUsers(ctx, 1, -5)
	assert.ErrorIs(t, err, errs.ErrValidation)
}
