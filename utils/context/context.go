package context

import (
	"context"
	"errors"

	"github.com/bartventer/gorm-multitenancy/middleware/nethttp/v8"
	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrExtractTenantID = errors.New("could not extract tenant ID from context")
	ErrExtractScope    = errors.New("no tenant scope bound to context")
	ErrGetRequestID    = errors.New("no requestID found in context")
)

type Opt func(ctx context.Context) context.Context

//nolint:fatcontext
func New(ctx context.Context, opts ...Opt) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, opt := range opts {
		ctx = opt(ctx)
	}

	return ctx
}

// ExtractTenantID returns the raw tenant identifier found on the request,
// before it has been checked against the registry.
func ExtractTenantID(ctx context.Context) (string, error) {
	tenantID, ok := ctx.Value(nethttp.TenantKey).(string)
	if !ok || tenantID == "" {
		return "", errs.Wrap(ErrExtractTenantID, nethttp.ErrTenantInvalid)
	}

	return tenantID, nil
}

func CreateTenantContext(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, nethttp.TenantKey, tenantID)
}

func WithTenant(tenantID string) Opt {
	return func(ctx context.Context) context.Context {
		return CreateTenantContext(ctx, tenantID)
	}
}

// Scope is the resolved execution scope of a unit of work. It only lives
// in the context of the request or task that created it.
type Scope struct {
	TenantID   string
	SchemaName string
}

type key string

const (
	requestID = key("requestID")
	scopeKey  = key("tenantScope")
)

// BindScope stores the scope and the tenant id in the context.
func BindScope(ctx context.Context, scope Scope) context.Context {
	ctx = CreateTenantContext(ctx, scope.TenantID)

	return context.WithValue(ctx, scopeKey, scope)
}

func WithScope(scope Scope) Opt {
	return func(ctx context.Context) context.Context {
		return BindScope(ctx, scope)
	}
}

func ExtractScope(ctx context.Context) (Scope, error) {
	scope, ok := ctx.Value(scopeKey).(Scope)
	if !ok || scope.SchemaName == "" {
		return Scope{}, ErrExtractScope
	}

	return scope, nil
}

func InjectRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestID, uuid.NewString())
}

func GetRequestID(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestID).(string)
	if !ok || requestID == "" {
		return "", ErrGetRequestID
	}

	return requestID, nil
}

// ClientInfo describes the caller of a request for audit records.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

const clientInfoKey = key("clientInfo")

func InjectClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey, info)
}

// ExtractClientInfo returns the caller of the request, or the zero value
// outside of a request.
func ExtractClientInfo(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey).(ClientInfo)
	return info
}
