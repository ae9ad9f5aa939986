package apierrors

import (
	"net/http"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/registry"
)

// highPrio holds the tenant context failures. They wrap generic kinds such
// as not found and must not be shadowed by them.
var highPrio = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{errs.ErrMissingTenantContext},
		ExposedError: &APIError{
			Reason:  MissingTenantContext,
			Message: "Tenant could not be determined from the request",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrUnknownTenant},
		ExposedError: &APIError{
			Reason:  UnknownTenant,
			Message: "Tenant does not exist",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrTenantNotActive},
		ExposedError: &APIError{
			Reason:  TenantNotActive,
			Message: "Tenant is not active",
			Status:  http.StatusForbidden,
		},
	},
}

var tenants = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{errs.ErrConflict, registry.ErrNameTaken},
		ExposedError: &APIError{
			Reason:  ConflictErr,
			Message: "Tenant name already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrConflict, registry.ErrDomainTaken},
		ExposedError: &APIError{
			Reason:  ConflictErr,
			Message: "Tenant domain already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrNotFound, registry.ErrTenantNotFound},
		ExposedError: &APIError{
			Reason:  ResourceNotFound,
			Message: "Tenant not found",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrInvalidStatusTransition},
		ExposedError: &APIError{
			Reason:  InvalidTransition,
			Message: "Tenant status does not allow this operation",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrProvisioningFailure},
		ExposedError: &APIError{
			Reason:  ProvisioningFailure,
			Message: "Tenant provisioning failed",
			Status:  http.StatusInternalServerError,
		},
	},
}

var defaultMapper = []errs.ExposedErrors[*APIError]{
	{
		InternalErrorChain: []error{errs.ErrValidation},
		ExposedError: &APIError{
			Reason:  ValidationErr,
			Message: "Request validation failed",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{ErrDecodeBody},
		ExposedError: &APIError{
			Reason:  JSONDecodeErr,
			Message: "Can't decode JSON body",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{ErrInvalidParam},
		ExposedError: &APIError{
			Reason:  ParamsErr,
			Message: "Query parameter is not valid",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrConflict},
		ExposedError: &APIError{
			Reason:  ConflictErr,
			Message: "Resource already exists",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{errs.ErrNotFound},
		ExposedError: &APIError{
			Reason:  ResourceNotFound,
			Message: "The requested resource was not found",
			Status:  http.StatusNotFound,
		},
	},
}
