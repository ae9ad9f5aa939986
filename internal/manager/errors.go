package manager

import "errors"

var (
	ErrCreateTenant         = errors.New("failed to create tenant")
	ErrGenerateTenantID     = errors.New("failed to generate tenant id")
	ErrTenantIDCollision    = errors.New("generated tenant id already exists")
	ErrCreateAdminUser      = errors.New("failed to create admin user")
	ErrHashPassword         = errors.New("failed to hash password")
	ErrWriteAuditLog        = errors.New("failed to write audit log")
	ErrActivateTenant       = errors.New("failed to activate tenant")
	ErrUpdateTenant         = errors.New("failed to update tenant")
	ErrPurgeTenant          = errors.New("failed to purge tenant")
	ErrPurgeNotInactive     = errors.New("only inactive tenants can be purged")
	ErrSuperAdminRoleAbsent = errors.New("super admin role is missing from namespace")
	ErrListNamespace        = errors.New("failed to list namespace resources")
)
