package registry_test

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/internal/testutils"
	"github.com/openkcm/tenancy/utils/ptr"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	db, _, _ := testutils.NewTestDB(t, testutils.TestDBConfig{})

	return registry.New(sql.NewRepository(db))
}

func TestRegister(t *testing.T) {
	reg := newRegistry(t)

	existing := testutils.NewTenant(func(tn *model.Tenant) {
		tn.Name = "Acme Inc"
		tn.Domain = ptr.PointTo("acme.test")
	})
	require.NoError(t, reg.Register(t.Context(), existing))

	tests := []struct {
		name   string
		tenant *model.Tenant
		err    error
	}{
		{
			name:   "Should register tenant",
			tenant: testutils.NewTenant(nil),
		},
		{
			name:   "Should conflict on name ignoring case",
			tenant: testutils.NewTenant(func(tn *model.Tenant) { tn.Name = "ACME inc" }),
			err:    registry.ErrNameTaken,
		},
		{
			name:   "Should conflict on domain ignoring case",
			tenant: testutils.NewTenant(func(tn *model.Tenant) { tn.Domain = ptr.PointTo("Acme.Test") }),
			err:    registry.ErrDomainTaken,
		},
		{
			name:   "Should conflict on tenant id",
			tenant: testutils.NewTenant(func(tn *model.Tenant) { tn.ID = existing.ID }),
			err:    registry.ErrTenantIDTaken,
		},
		{
			name:   "Should reject malformed tenant id",
			tenant: testutils.NewTenant(func(tn *model.Tenant) { tn.ID = "NOT-HEX!" }),
			err:    errs.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(t.Context(), tt.tenant)
			if tt.err == nil {
				assert.NoError(t, err)
				assert.Equal(t, "tenant_"+tt.tenant.ID, tt.tenant.SchemaName)

				return
			}

			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("Should classify name collision as conflict", func(t *testing.T) {
		assert.ErrorIs(t, reg.Register(t.Context(), testutils.NewTenant(func(tn *model.Tenant) {
			tn.Name = existing.Name
		})), errs.ErrConflict)
	})
}

func TestRegisterConcurrentSameName(t *testing.T) {
	reg := newRegistry(t)

	const attempts = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := reg.Register(t.Context(), testutils.NewTenant(func(tn *model.Tenant) {
				tn.Name = "Same Name"
			}))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, errs.ErrConflict):
				conflicts++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestLookup(t *testing.T) {
	reg := newRegistry(t)

	tenant := testutils.NewTenant(func(tn *model.Tenant) {
		tn.Domain = ptr.PointTo("lookup.test")
	})
	require.NoError(t, reg.Register(t.Context(), tenant))

	t.Run("Should find by id", func(t *testing.T) {
		found, err := reg.Lookup(t.Context(), tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, tenant.Name, found.Name)
		assert.Equal(t, tenant.SchemaName, found.SchemaName)
	})

	t.Run("Should find by domain ignoring case", func(t *testing.T) {
		found, err := reg.LookupByDomain(t.Context(), "LOOKUP.test")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
	})

	t.Run("Should find by schema", func(t *testing.T) {
		found, err := reg.LookupBySchema(t.Context(), tenant.SchemaName)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, found.ID)
	})

	t.Run("Should return not found", func(t *testing.T) {
		_, err := reg.Lookup(t.Context(), "00000000")
		assert.ErrorIs(t, err, errs.ErrNotFound)

		_, err = reg.Lookup(t.Context(), "../etc")
		assert.ErrorIs(t, err, errs.ErrNotFound)

		_, err = reg.LookupByDomain(t.Context(), "missing.test")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("Should report existence", func(t *testing.T) {
		ok, err := reg.Exists(t.Context(), tenant.SchemaName)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = reg.ExistsByName(t.Context(), tenant.Name, tenant.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = reg.ExistsByDomain(t.Context(), "LOOKUP.TEST", "")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestList(t *testing.T) {
	reg := newRegistry(t)

	for i := range 5 {
		require.NoError(t, reg.Register(t.Context(), testutils.NewTenant(func(tn *model.Tenant) {
			tn.Name = fmt.Sprintf("Widget %d", i)
			tn.Status = model.TenantStatusActive
			if i%2 == 0 {
				tn.PlanType = model.PlanTypePro
			}
		})))
	}

	require.NoError(t, reg.Register(t.Context(), testutils.NewTenant(func(tn *model.Tenant) {
		tn.Name = "Acme Inc"
		tn.Status = model.TenantStatusSuspended
	})))

	tests := []struct {
		name     string
		filter   registry.Filter
		page     int
		size     int
		expLen   int
		expTotal int
		expPages int
	}{
		{name: "Should list all", page: 1, size: 20, expLen: 6, expTotal: 6, expPages: 1},
		{name: "Should paginate", page: 2, size: 4, expLen: 2, expTotal: 6, expPages: 2},
		{name: "Should return empty page past the end", page: 3, size: 4, expLen: 0, expTotal: 6, expPages: 2},
		{
			name:     "Should filter by status",
			filter:   registry.Filter{Status: ptr.PointTo(model.TenantStatusSuspended)},
			page:     1,
			size:     20,
			expLen:   1,
			expTotal: 1,
			expPages: 1,
		},
		{
			name: "Should combine filters with AND",
			filter: registry.Filter{
				Status:   ptr.PointTo(model.TenantStatusActive),
				PlanType: ptr.PointTo(model.PlanTypePro),
			},
			page:     1,
			size:     20,
			expLen:   3,
			expTotal: 3,
			expPages: 1,
		},
		{
			name:     "Should search ignoring case",
			filter:   registry.Filter{Search: "acme"},
			page:     1,
			size:     20,
			expLen:   1,
			expTotal: 1,
			expPages: 1,
		},
		{
			name:     "Should combine search with filters",
			filter:   registry.Filter{Search: "widget", PlanType: ptr.PointTo(model.PlanTypeBasic)},
			page:     1,
			size:     20,
			expLen:   2,
			expTotal: 2,
			expPages: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenants, p, err := reg.List(t.Context(), tt.filter, tt.page, tt.size)
			require.NoError(t, err)
			assert.Len(t, tenants, tt.expLen)
			assert.Equal(t, tt.expTotal, p.Total)
			assert.Equal(t, tt.expPages, p.Pages)
			assert.Equal(t, tt.page, p.Page)
		})
	}

	t.Run("Should reject invalid page", func(t *testing.T) {
		_, _, err := reg.List(t.Context(), registry.Filter{}, 0, 20)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("Should reject page whose offset overflows", func(t *testing.T) {
		_, _, err := reg.List(t.Context(), registry.Filter{}, math.MaxInt/20+1, 20)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.ErrorIs(t, err, registry.ErrInvalidPageArgs)
	})
}

func TestUpdate(t *testing.T) {
	reg := newRegistry(t)

	a := testutils.NewTenant(nil)
	b := testutils.NewTenant(nil)
	require.NoError(t, reg.Register(t.Context(), a))
	require.NoError(t, reg.Register(t.Context(), b))

	t.Run("Should update given fields", func(t *testing.T) {
		err := reg.Update(t.Context(), &model.Tenant{ID: a.ID, Name: "Renamed", MaxUsers: 50},
			repo.NameField, repo.MaxUsersField)
		require.NoError(t, err)

		found, err := reg.Lookup(t.Context(), a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", found.Name)
		assert.Equal(t, 50, found.MaxUsers)
		assert.Equal(t, a.PlanType, found.PlanType)
	})

	t.Run("Should conflict on taken name", func(t *testing.T) {
		err := reg.Update(t.Context(), &model.Tenant{ID: a.ID, Name: b.Name}, repo.NameField)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("Should set status", func(t *testing.T) {
		require.NoError(t, reg.SetStatus(t.Context(), a.ID, model.TenantStatusActive))

		counts, err := reg.CountByStatus(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, counts[model.TenantStatusActive])
		assert.Equal(t, 1, counts[model.TenantStatusPending])
		assert.Equal(t, 0, counts[model.TenantStatusInactive])
	})

	t.Run("Should reject unknown status", func(t *testing.T) {
		assert.ErrorIs(t, reg.SetStatus(t.Context(), a.ID, "archived"), errs.ErrValidation)
	})

	t.Run("Should return not found", func(t *testing.T) {
		err := reg.Update(t.Context(), &model.Tenant{ID: "0badc0de", Name: "x"}, repo.NameField)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
