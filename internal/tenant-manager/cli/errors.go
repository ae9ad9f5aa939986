package cli

import "errors"

var (
	ErrTenantIDRequired  = errors.New("tenant id is required")
	ErrUnknownTarget     = errors.New("unknown migration target")
	ErrUnknownType       = errors.New("unknown migration type")
	ErrRetentionRequired = errors.New("retention must be positive")
)
