package provisioner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/provisioner"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/repo/sql"
	"github.com/openkcm/tenancy/internal/testutils"
)

func TestCreateNamespace(t *testing.T) {
	db, _, _ := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(db)
	p := provisioner.New(r)
	tenantID := testutils.NewTenantID()

	t.Run("Should create namespace with tables and roles", func(t *testing.T) {
		res, err := p.CreateNamespace(t.Context(), tenantID)
		require.NoError(t, err)
		assert.True(t, res.SchemaCreated)
		assert.True(t, res.TablesCreated)
		assert.Equal(t, 3, res.RolesSeeded)

		for _, m := range model.NamespaceModels() {
			assert.True(t, db.Migrator().HasTable(model.SchemaNameFor(tenantID)+"."+m.TableName()))
		}
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		res, err := p.CreateNamespace(t.Context(), tenantID)
		require.NoError(t, err)
		assert.False(t, res.SchemaCreated)
		assert.Equal(t, 0, res.RolesSeeded)

		var roles []*model.Role

		count, err := r.List(testutils.ScopedContext(t.Context(), tenantID), &model.Role{}, &roles, *repo.NewQuery())
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		names := make([]string, 0, len(roles))
		for _, role := range roles {
			names = append(names, role.Name)
			assert.True(t, role.IsSystem)
		}

		assert.ElementsMatch(t, []string{constants.RoleSuperAdmin, constants.RoleAdmin, constants.RoleUser}, names)
	})

	t.Run("Should reject malformed tenant id", func(t *testing.T) {
		_, err := p.CreateNamespace(t.Context(), `x"; DROP SCHEMA public; --`)
		assert.ErrorIs(t, err, provisioner.ErrCreateNamespace)
		assert.ErrorIs(t, err, model.ErrInvalidTenantID)
	})
}

func TestCreateNamespaceInTransaction(t *testing.T) {
	db, _, _ := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(db)
	tenantID := testutils.NewTenantID()

	err := r.Transaction(t.Context(), func(ctx context.Context, tx repo.Repo) error {
		_, err := provisioner.New(tx).CreateNamespace(ctx, tenantID)
		require.NoError(t, err)

		return assert.AnError
	})
	require.Error(t, err)

	exists, err := provisioner.New(r).NamespaceExists(t.Context(), tenantID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDropNamespace(t *testing.T) {
	db, _, _ := testutils.NewTestDB(t, testutils.TestDBConfig{})
	p := provisioner.New(sql.NewRepository(db))
	tenantID := testutils.NewTenantID()

	_, err := p.CreateNamespace(t.Context(), tenantID)
	require.NoError(t, err)

	require.NoError(t, p.DropNamespace(t.Context(), tenantID))

	exists, err := p.NamespaceExists(t.Context(), tenantID)
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("Should not fail on missing namespace", func(t *testing.T) {
		assert.NoError(t, p.DropNamespace(t.Context(), tenantID))
	})

	t.Run("Should reject malformed tenant id", func(t *testing.T) {
		assert.ErrorIs(t, p.DropNamespace(t.Context(), "public"), provisioner.ErrDropNamespace)
	})
}
