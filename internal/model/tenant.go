package model

import (
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/bartventer/gorm-multitenancy/v8/pkg/namespace"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/constants"
)

var (
	ErrInvalidSchemaName = errors.New("schema name is not a tenant namespace")
	ErrInvalidTenantID   = errors.New("tenant id must be 8 lowercase hex characters")

	tenantIDPattern   = regexp.MustCompile(`^[0-9a-f]{8}$`)
	schemaNamePattern = regexp.MustCompile(`^tenant_[0-9a-f]{8}$`)
)

// Tenant is the registry record of a tenant. It lives in the shared schema
// and points to the tenant's private namespace.
type Tenant struct {
	multitenancy.TenantModel
	AutoTimeModel

	ID        string  `gorm:"type:varchar(8);primaryKey"`
	Name      string  `gorm:"type:varchar(100);not null;index:idx_tenants_name_lower,unique,expression:lower(name)"`
	Domain    *string `gorm:"type:varchar(255);index:idx_tenants_domain_lower,unique,expression:lower(domain)"`
	AvatarURL *string `gorm:"type:varchar(500)"`

	Status     TenantStatus    `gorm:"type:varchar(20);not null;index"`
	PlanType   PlanType        `gorm:"type:varchar(20);not null;default:'basic'"`
	MaxUsers   int             `gorm:"not null;default:10"`
	MaxStorage int64           `gorm:"not null;default:1073741824"`
	Settings   json.RawMessage `gorm:"type:jsonb"`

	// DeactivatedAt is set when the tenant is soft deleted
	DeactivatedAt *time.Time
}

func (Tenant) TableName() string   { return "public.tenants" }
func (Tenant) IsSharedModel() bool { return true }

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// SchemaNameFor derives the namespace name of a tenant. The schema name is
// never taken from user input.
func SchemaNameFor(tenantID string) string {
	return constants.SchemaPrefix + tenantID
}

// DomainURLFor derives the routing host of a tenant.
func DomainURLFor(tenantID, baseDomain string) string {
	return tenantID + "." + baseDomain
}

func ValidateTenantID(tenantID string) error {
	if !tenantIDPattern.MatchString(tenantID) {
		return ErrInvalidTenantID
	}

	return nil
}

// ValidateSchemaName checks a name before it is interpolated as an identifier.
func ValidateSchemaName(schemaName string) error {
	if !schemaNamePattern.MatchString(schemaName) {
		return ErrInvalidSchemaName
	}

	return namespace.Validate(schemaName)
}
