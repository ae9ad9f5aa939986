package model

import (
	"context"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/tenancy/internal/constants"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

func LogInjectTenant(ctx context.Context, tenant *Tenant) context.Context {
	return slogctx.With(ctx,
		slog.String(constants.LogKeyTenantID, tenant.ID),
		slog.Group("tenantData",
			slog.String("status", tenant.Status.String()),
			slog.String("schema", tenant.SchemaName),
		),
	)
}

func WithLogInjectTenant(tenant *Tenant) tenancyctx.Opt {
	return func(ctx context.Context) context.Context {
		return LogInjectTenant(ctx, tenant)
	}
}
