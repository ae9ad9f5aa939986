package constants

// Role names seeded into every tenant namespace
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// SchemaPrefix prefixes every tenant namespace name
const SchemaPrefix = "tenant_"

// TenantIDLength is the number of hex characters of a generated tenant id
const TenantIDLength = 8
