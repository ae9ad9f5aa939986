package provisioner

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

var (
	ErrCreateNamespace = errors.New("failed to create namespace")
	ErrSeedRoles       = errors.New("failed to seed system roles")
	ErrDropNamespace   = errors.New("failed to drop namespace")
)

// Result describes what a CreateNamespace call changed.
type Result struct {
	SchemaCreated bool
	TablesCreated bool
	RolesSeeded   int
}

// Provisioner creates and destroys tenant namespaces. Given a transactional
// repo every step joins the caller's transaction.
type Provisioner struct {
	repo repo.Repo
}

func New(r repo.Repo) *Provisioner {
	return &Provisioner{repo: r}
}

// CreateNamespace creates the namespace of the tenant with its table set and
// the system roles. Running it again for the same tenant is a no-op.
func (p *Provisioner) CreateNamespace(ctx context.Context, tenantID string) (Result, error) {
	schemaName, err := schemaFor(tenantID)
	if err != nil {
		return Result{}, errs.Wrap(ErrCreateNamespace, err)
	}

	existed, err := p.repo.NamespaceExists(ctx, schemaName)
	if err != nil {
		return Result{}, errs.Wrap(ErrCreateNamespace, err)
	}

	err = p.repo.MigrateNamespace(ctx, schemaName)
	if err != nil {
		return Result{}, errs.Wrap(ErrCreateNamespace, err)
	}

	ctx = tenancyctx.BindScope(ctx, tenancyctx.Scope{TenantID: tenantID, SchemaName: schemaName})

	seeded := 0

	for _, role := range SystemRoles() {
		inserted, err := p.repo.CreateIfAbsent(ctx, role, repo.NameField)
		if err != nil {
			return Result{}, errs.Wrap(ErrSeedRoles, err)
		}

		if inserted {
			seeded++
		}
	}

	log.Info(ctx, "Namespace provisioned")

	return Result{
		SchemaCreated: !existed,
		TablesCreated: true,
		RolesSeeded:   seeded,
	}, nil
}

// DropNamespace drops the namespace of the tenant and everything in it.
func (p *Provisioner) DropNamespace(ctx context.Context, tenantID string) error {
	schemaName, err := schemaFor(tenantID)
	if err != nil {
		return errs.Wrap(ErrDropNamespace, err)
	}

	err = p.repo.DropNamespace(ctx, schemaName)
	if err != nil {
		return errs.Wrap(ErrDropNamespace, err)
	}

	return nil
}

func (p *Provisioner) NamespaceExists(ctx context.Context, tenantID string) (bool, error) {
	schemaName, err := schemaFor(tenantID)
	if err != nil {
		return false, err
	}

	return p.repo.NamespaceExists(ctx, schemaName)
}

func schemaFor(tenantID string) (string, error) {
	err := model.ValidateTenantID(tenantID)
	if err != nil {
		return "", err
	}

	schemaName := model.SchemaNameFor(tenantID)

	return schemaName, model.ValidateSchemaName(schemaName)
}

// SystemRoles are seeded into every namespace.
func SystemRoles() []*model.Role {
	return []*model.Role{
		{
			ID:          uuid.New(),
			Name:        constants.RoleSuperAdmin,
			Description: "Super administrator with all permissions",
			Permissions: json.RawMessage(`{"all": true}`),
			IsSystem:    true,
		},
		{
			ID:          uuid.New(),
			Name:        constants.RoleAdmin,
			Description: "Administrator with user and role management",
			Permissions: json.RawMessage(`{"user_management": true, "role_management": true}`),
			IsSystem:    true,
		},
		{
			ID:          uuid.New(),
			Name:        constants.RoleUser,
			Description: "Regular user with read access",
			Permissions: json.RawMessage(`{"read": true}`),
			IsSystem:    true,
		},
	}
}
