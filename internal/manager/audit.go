package manager

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
	"github.com/openkcm/tenancy/utils/ptr"
)

const (
	AuditTenantCreated     = "tenant.created"
	AuditTenantUpdated     = "tenant.updated"
	AuditTenantSuspended   = "tenant.suspended"
	AuditTenantResumed     = "tenant.resumed"
	AuditTenantDeactivated = "tenant.deactivated"

	auditResourceTenant = "tenant"
)

// writeAudit records an action in the audit log of the namespace bound to
// ctx.
func writeAudit(
	ctx context.Context,
	r repo.Repo,
	actor *uuid.UUID,
	action string,
	resourceID string,
	details map[string]any,
) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return errs.Wrap(ErrWriteAuditLog, err)
	}

	client := tenancyctx.ExtractClientInfo(ctx)

	err = r.Create(ctx, &model.AuditLog{
		UserID:       actor,
		Action:       action,
		ResourceType: auditResourceTenant,
		ResourceID:   resourceID,
		Details:      raw,
		IPAddress:    ptr.EmptyToNil(&client.IPAddress),
		UserAgent:    client.UserAgent,
	})
	if err != nil {
		return errs.Wrap(ErrWriteAuditLog, err)
	}

	return nil
}
