package model

import "encoding/json"

// TenantCreate is the input of a tenant registration.
type TenantCreate struct {
	Name       string
	Domain     *string
	AvatarURL  *string
	PlanType   PlanType
	MaxUsers   *int
	MaxStorage *int64
	Settings   json.RawMessage
	AdminUser  AdminUserCreate
}

// AdminUserCreate is the first account created in a new namespace.
type AdminUserCreate struct {
	FullName string
	Email    string
	Password string //nolint:gosec
	Phone    *string
}

// TenantUpdate holds the registry fields an update may change. Nil fields
// are left untouched.
type TenantUpdate struct {
	Name       *string
	Domain     *string
	AvatarURL  *string
	PlanType   *PlanType
	MaxUsers   *int
	MaxStorage *int64
	Settings   json.RawMessage
}
