package registry

import (
	"context"
	"errors"
	"math"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/repo"
)

var (
	ErrTenantIDTaken   = errors.New("tenant id already exists")
	ErrNameTaken       = errors.New("tenant name already exists")
	ErrDomainTaken     = errors.New("tenant domain already exists")
	ErrSchemaTaken     = errors.New("tenant schema already exists")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrRegisterTenant  = errors.New("failed to register tenant")
	ErrLookupTenant    = errors.New("failed to look up tenant")
	ErrListTenants     = errors.New("failed to list tenants")
	ErrUpdateTenant    = errors.New("failed to update tenant")
	ErrInvalidPageArgs = errors.New("page and size must be positive")
)

// Filter narrows a tenant listing. Set fields are combined with AND.
type Filter struct {
	Status   *model.TenantStatus
	PlanType *model.PlanType
	// Search matches name, domain or tenant id as a case-insensitive substring
	Search string
}

type Pagination struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Registry is the catalog of tenants kept in the shared schema.
type Registry struct {
	repo repo.Repo
}

func New(r repo.Repo) *Registry {
	return &Registry{repo: r}
}

// Register inserts the registry row of a new tenant. Collisions on id, name,
// domain or schema are reported as conflicts, including the ones only the
// unique indexes catch at commit time.
func (r *Registry) Register(ctx context.Context, tenant *model.Tenant) error {
	err := model.ValidateTenantID(tenant.ID)
	if err != nil {
		return errs.Wrap(ErrRegisterTenant, errs.Wrap(errs.ErrValidation, err))
	}

	tenant.SchemaName = model.SchemaNameFor(tenant.ID)

	err = model.ValidateSchemaName(tenant.SchemaName)
	if err != nil {
		return errs.Wrap(ErrRegisterTenant, errs.Wrap(errs.ErrValidation, err))
	}

	err = r.ensureUnique(ctx, tenant)
	if err != nil {
		return err
	}

	err = r.repo.Create(ctx, tenant)
	if errors.Is(err, repo.ErrUniqueConstraint) {
		return errs.Wrap(errs.ErrConflict, err)
	}

	if err != nil {
		return errs.Wrap(ErrRegisterTenant, err)
	}

	return nil
}

func (r *Registry) ensureUnique(ctx context.Context, tenant *model.Tenant) error {
	checks := []struct {
		exists func() (bool, error)
		err    error
	}{
		{func() (bool, error) { return r.exists(ctx, repo.IDField, tenant.ID, "") }, ErrTenantIDTaken},
		{func() (bool, error) { return r.Exists(ctx, tenant.SchemaName) }, ErrSchemaTaken},
		{func() (bool, error) { return r.ExistsByName(ctx, tenant.Name, "") }, ErrNameTaken},
		{func() (bool, error) {
			if tenant.Domain == nil || *tenant.Domain == "" {
				return false, nil
			}

			return r.ExistsByDomain(ctx, *tenant.Domain, "")
		}, ErrDomainTaken},
	}

	for _, c := range checks {
		found, err := c.exists()
		if err != nil {
			return err
		}

		if found {
			return errs.Wrap(errs.ErrConflict, c.err)
		}
	}

	return nil
}

// Lookup returns the tenant with the given id.
func (r *Registry) Lookup(ctx context.Context, tenantID string) (*model.Tenant, error) {
	if model.ValidateTenantID(tenantID) != nil {
		return nil, errs.Wrap(errs.ErrNotFound, ErrTenantNotFound)
	}

	return r.first(ctx, repo.NewCompositeKey().Where(repo.IDField, tenantID))
}

// LookupByDomain returns the tenant owning the customer domain, ignoring case.
func (r *Registry) LookupByDomain(ctx context.Context, domain string) (*model.Tenant, error) {
	return r.first(ctx, repo.NewCompositeKey().Where(repo.DomainField, domain, repo.Fold))
}

// LookupBySchema returns the tenant owning the namespace.
func (r *Registry) LookupBySchema(ctx context.Context, schemaName string) (*model.Tenant, error) {
	return r.first(ctx, repo.NewCompositeKey().Where(repo.SchemaNameField, schemaName))
}

func (r *Registry) first(ctx context.Context, ck repo.CompositeKey) (*model.Tenant, error) {
	tenant := &model.Tenant{}

	_, err := r.repo.First(ctx, tenant, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, ErrTenantNotFound)
	}

	if err != nil {
		return nil, errs.Wrap(ErrLookupTenant, err)
	}

	return tenant, nil
}

// List returns one page of tenants, newest first. Pages are 1-indexed.
func (r *Registry) List(
	ctx context.Context,
	filter Filter,
	page, size int,
) ([]*model.Tenant, Pagination, error) {
	if page < 1 || size < 1 || page > math.MaxInt/size {
		return nil, Pagination{}, errs.Wrap(errs.ErrValidation, ErrInvalidPageArgs)
	}

	query := repo.NewQuery().
		SetLimit(size).
		SetOffset((page-1)*size).
		Order(
			repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc},
			repo.OrderField{Field: repo.IDField, Direction: repo.Asc},
		)

	ck := repo.NewCompositeKey()
	if filter.Status != nil {
		ck = ck.Where(repo.StatusField, *filter.Status)
	}

	if filter.PlanType != nil {
		ck = ck.Where(repo.PlanTypeField, *filter.PlanType)
	}

	if len(ck.Conds) > 0 {
		query = query.Where(repo.NewCompositeKeyGroup(ck))
	}

	if filter.Search != "" {
		search := repo.NewAnyCompositeKey().
			Where(repo.NameField, filter.Search, repo.Contains).
			Where(repo.DomainField, filter.Search, repo.Contains).
			Where(repo.IDField, filter.Search, repo.Contains)
		query = query.Where(repo.NewCompositeKeyGroup(search))
	}

	var tenants []*model.Tenant

	total, err := r.repo.List(ctx, &model.Tenant{}, &tenants, *query)
	if err != nil {
		return nil, Pagination{}, errs.Wrap(ErrListTenants, err)
	}

	return tenants, Pagination{
		Page:  page,
		Size:  size,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// Exists reports whether a tenant owns the namespace.
func (r *Registry) Exists(ctx context.Context, schemaName string) (bool, error) {
	return r.exists(ctx, repo.SchemaNameField, schemaName, "")
}

// ExistsByName reports whether another tenant uses the name, ignoring case.
// excludeTenantID skips the tenant being updated.
func (r *Registry) ExistsByName(ctx context.Context, name, excludeTenantID string) (bool, error) {
	return r.existsFold(ctx, repo.NameField, name, excludeTenantID)
}

// ExistsByDomain reports whether another tenant uses the domain, ignoring case.
func (r *Registry) ExistsByDomain(ctx context.Context, domain, excludeTenantID string) (bool, error) {
	return r.existsFold(ctx, repo.DomainField, domain, excludeTenantID)
}

func (r *Registry) exists(ctx context.Context, field repo.QueryField, value any, excludeTenantID string) (bool, error) {
	return r.count(ctx, repo.NewCompositeKey().Where(field, value), excludeTenantID)
}

func (r *Registry) existsFold(ctx context.Context, field repo.QueryField, value, excludeTenantID string) (bool, error) {
	return r.count(ctx, repo.NewCompositeKey().Where(field, value, repo.Fold), excludeTenantID)
}

func (r *Registry) count(ctx context.Context, ck repo.CompositeKey, excludeTenantID string) (bool, error) {
	if excludeTenantID != "" {
		ck = ck.Where(repo.IDField, excludeTenantID, repo.NotEq)
	}

	var tenants []*model.Tenant

	total, err := r.repo.List(ctx, &model.Tenant{}, &tenants,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)).SetLimit(1))
	if err != nil {
		return false, errs.Wrap(ErrLookupTenant, err)
	}

	return total > 0, nil
}

// Update writes the given fields of the tenant. Without fields only the
// non-zero values are written.
func (r *Registry) Update(ctx context.Context, tenant *model.Tenant, fields ...repo.QueryField) error {
	query := repo.NewQuery().
		Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().Where(repo.IDField, tenant.ID)))
	if len(fields) > 0 {
		query = query.Update(append(fields, repo.UpdatedField)...)
	}

	updated, err := r.repo.Patch(ctx, tenant, *query)
	if errors.Is(err, repo.ErrUniqueConstraint) {
		return errs.Wrap(errs.ErrConflict, err)
	}

	if err != nil {
		return errs.Wrap(ErrUpdateTenant, err)
	}

	if !updated {
		return errs.Wrap(errs.ErrNotFound, ErrTenantNotFound)
	}

	return nil
}

// SetStatus writes the status of the tenant without checking the transition.
func (r *Registry) SetStatus(ctx context.Context, tenantID string, status model.TenantStatus) error {
	err := status.Validate()
	if err != nil {
		return errs.Wrap(errs.ErrValidation, err)
	}

	return r.Update(ctx, &model.Tenant{ID: tenantID, Status: status}, repo.StatusField)
}

// CountByStatus returns the number of tenants in every status.
func (r *Registry) CountByStatus(ctx context.Context) (map[model.TenantStatus]int, error) {
	counts := make(map[model.TenantStatus]int, len(model.TenantStatuses()))

	for _, status := range model.TenantStatuses() {
		var tenants []*model.Tenant

		ck := repo.NewCompositeKey().Where(repo.StatusField, status)

		total, err := r.repo.List(ctx, &model.Tenant{}, &tenants,
			*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)).SetLimit(1))
		if err != nil {
			return nil, errs.Wrap(ErrListTenants, err)
		}

		counts[status] = total
	}

	return counts, nil
}
