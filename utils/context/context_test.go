package context_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

func TestExtractTenantID(t *testing.T) {
	tests := []struct {
		name      string
		tenantID  string
		expectErr bool
	}{
		{name: "Valid Tenant ID", tenantID: "a1b2c3d4"},
		{name: "Empty Tenant ID", tenantID: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tenancyctx.CreateTenantContext(context.Background(), tt.tenantID)

			got, err := tenancyctx.ExtractTenantID(ctx)
			if tt.expectErr {
				assert.ErrorIs(t, err, tenancyctx.ErrExtractTenantID)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.tenantID, got)
		})
	}
}

func TestScope(t *testing.T) {
	t.Run("Should fail on unscoped context", func(t *testing.T) {
		_, err := tenancyctx.ExtractScope(context.Background())
		assert.ErrorIs(t, err, tenancyctx.ErrExtractScope)
	})

	t.Run("Should bind scope and tenant id", func(t *testing.T) {
		scope := tenancyctx.Scope{TenantID: "a1b2c3d4", SchemaName: "tenant_a1b2c3d4"}
		ctx := tenancyctx.New(context.Background(), tenancyctx.WithScope(scope))

		got, err := tenancyctx.ExtractScope(ctx)
		require.NoError(t, err)
		assert.Equal(t, scope, got)

		tenantID, err := tenancyctx.ExtractTenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, scope.TenantID, tenantID)
	})

	t.Run("Should not leak scope to parent context", func(t *testing.T) {
		parent := context.Background()
		_ = tenancyctx.BindScope(parent, tenancyctx.Scope{TenantID: "x", SchemaName: "tenant_x"})

		_, err := tenancyctx.ExtractScope(parent)
		assert.Error(t, err)
	})
}

func TestRequestID(t *testing.T) {
	_, err := tenancyctx.GetRequestID(context.Background())
	assert.ErrorIs(t, err, tenancyctx.ErrGetRequestID)

	ctx := tenancyctx.InjectRequestID(context.Background())
	id, err := tenancyctx.GetRequestID(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
}
