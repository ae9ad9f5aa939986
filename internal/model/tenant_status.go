package model

import "errors"

var ErrInvalidTenantStatus = errors.New("tenant status is not valid")

// TenantStatus represents the lifecycle status of the tenant.
type TenantStatus string

const (
	TenantStatusPending   TenantStatus = "pending"
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusInactive  TenantStatus = "inactive"
)

var validTenantStatuses = map[TenantStatus]struct{}{
	TenantStatusPending:   {},
	TenantStatusActive:    {},
	TenantStatusSuspended: {},
	TenantStatusInactive:  {},
}

// TenantStatuses lists every status in lifecycle order.
func TenantStatuses() []TenantStatus {
	return []TenantStatus{
		TenantStatusPending,
		TenantStatusActive,
		TenantStatusSuspended,
		TenantStatusInactive,
	}
}

// Validate returns an error if the status is invalid.
func (s TenantStatus) Validate() error {
	if _, ok := validTenantStatuses[s]; !ok {
		return ErrInvalidTenantStatus
	}

	return nil
}

func (s TenantStatus) String() string {
	return string(s)
}
