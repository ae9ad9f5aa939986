package apierrors

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/registry"
)

const (
	InternalServerErr    = "INTERNAL_SERVER_ERROR"
	JSONDecodeErr        = "JSON_DECODE_ERROR"
	ValidationErr        = "VALIDATION_ERROR"
	ParamsErr            = "PARAMS_ERROR"
	ResourceNotFound     = "RESOURCE_NOT_FOUND"
	ConflictErr          = "CONFLICT"
	MissingTenantContext = "MISSING_TENANT_CONTEXT"
	UnknownTenant        = "UNKNOWN_TENANT"
	TenantNotActive      = "TENANT_NOT_ACTIVE"
	InvalidTransition    = "INVALID_STATUS_TRANSITION"
	ProvisioningFailure  = "PROVISIONING_FAILURE"

	// GeneralField names errors that concern the request as a whole
	GeneralField = "general"
)

var (
	ErrDecodeBody   = errors.New("request body is not valid JSON")
	ErrInvalidParam = errors.New("query parameter is not valid")
)

// APIError is the error exposed to API clients.
type APIError struct {
	Reason  string
	Message string
	Status  int
	Errors  []errs.FieldError
}

func (e *APIError) DefaultError() *APIError {
	return InternalServerErrorMessage()
}

// WithCause copies the exposed error and attaches the field errors carried
// by err. Errors without fields get a single general entry.
func (e *APIError) WithCause(err error) *APIError {
	exposed := *e
	exposed.Errors = slices.Clone(errs.FieldErrors(err))

	if len(exposed.Errors) == 0 {
		exposed.Errors = conflictFields(err)
	}

	if len(exposed.Errors) == 0 {
		exposed.Errors = []errs.FieldError{{Field: GeneralField, Message: e.Message}}
	}

	return &exposed
}

func conflictFields(err error) []errs.FieldError {
	switch {
	case errors.Is(err, registry.ErrNameTaken):
		return []errs.FieldError{{Field: "name", Message: registry.ErrNameTaken.Error()}}
	case errors.Is(err, registry.ErrDomainTaken):
		return []errs.FieldError{{Field: "domain", Message: registry.ErrDomainTaken.Error()}}
	case errors.Is(err, registry.ErrTenantIDTaken), errors.Is(err, registry.ErrSchemaTaken):
		return []errs.FieldError{{Field: "tenant_id", Message: registry.ErrTenantIDTaken.Error()}}
	}

	return nil
}

func InternalServerErrorMessage() *APIError {
	return &APIError{
		Reason:  InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
		Errors:  []errs.FieldError{{Field: GeneralField, Message: "Internal server error"}},
	}
}

var APIErrorMapper = errs.NewMapper(slices.Concat(tenants, defaultMapper), highPrio)

// Transform maps an internal error to the error exposed to clients.
func Transform(ctx context.Context, err error) *APIError {
	return APIErrorMapper.Transform(ctx, err)
}
