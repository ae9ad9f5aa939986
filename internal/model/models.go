package model

import "github.com/bartventer/gorm-multitenancy/v8/pkg/driver"

// SharedModels live in the public schema.
func SharedModels() []driver.TenantTabler {
	return []driver.TenantTabler{&Tenant{}}
}

// NamespaceModels are created in every tenant namespace.
func NamespaceModels() []driver.TenantTabler {
	return []driver.TenantTabler{
		&User{},
		&Role{},
		&UserRole{},
		&Invitation{},
		&AuditLog{},
	}
}

// AllModels is the full set registered with the multitenancy driver.
func AllModels() []driver.TenantTabler {
	return append(SharedModels(), NamespaceModels()...)
}
