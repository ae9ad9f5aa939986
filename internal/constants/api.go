package constants

const (
	APIName = "Tenancy"
)

const (
	DefaultConfigPath1 = "/etc/tenancy"
	DefaultConfigPath2 = "$HOME/.tenancy"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request sources a tenant identifier can be read from
const (
	TenantPathParam  = "tenantID"
	TenantPathPrefix = "/tenant/"
	TenantQueryParam = "tenant_id"
	TenantHeader     = "X-Tenant-ID"
)
