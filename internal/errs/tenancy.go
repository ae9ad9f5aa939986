package errs

import (
	"errors"
	"strings"
)

// Error kinds surfaced by the tenancy components. Callers match them with
// errors.Is; the API layer maps them to HTTP statuses.
var (
	ErrValidation              = errors.New("validation failed")
	ErrConflict                = errors.New("resource already exists")
	ErrNotFound                = errors.New("resource not found")
	ErrMissingTenantContext    = errors.New("tenant context is missing")
	ErrUnknownTenant           = errors.New("tenant is unknown")
	ErrTenantNotActive         = errors.New("tenant is not active")
	ErrProvisioningFailure     = errors.New("tenant provisioning failed")
	ErrInvalidStatusTransition = errors.New("invalid tenant status transition")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of an input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}

	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a failing field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed so the result can be returned directly.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

// NewValidationError builds a ValidationError for one field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// FieldErrors extracts the field list of a ValidationError in the chain.
func FieldErrors(err error) []FieldError {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Fields
	}

	return nil
}
