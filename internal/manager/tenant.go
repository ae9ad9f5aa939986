package manager

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/constants"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/provisioner"
	"github.com/openkcm/tenancy/internal/registry"
	"github.com/openkcm/tenancy/internal/repo"
	"github.com/openkcm/tenancy/internal/validation"
	tenancyctx "github.com/openkcm/tenancy/utils/context"
)

const (
	defaultIDGenerationAttempts = 5
	idGenerationDelay           = 10 * time.Millisecond
	userIDPrefix                = "user_"
	maxUsernameLength           = 50
)

type (
	// AdminUserSummary is the part of the admin account returned on creation.
	AdminUserSummary struct {
		ID       uuid.UUID
		UserID   string
		Username string
		Email    string
		FullName string
		Role     string
		Status   model.UserStatus
	}

	SetupStatus struct {
		SchemaCreated         bool
		TablesCreated         bool
		AdminAccountActivated bool
	}

	CreateResult struct {
		Tenant      *model.Tenant
		AdminUser   AdminUserSummary
		SetupStatus SetupStatus
	}

	// ListQuery holds the raw listing parameters of a request.
	ListQuery struct {
		Page     int
		Size     int
		Status   string
		PlanType string
		Search   string
	}
)

type TenantManager struct {
	repo      repo.Repo
	cfg       config.Tenancy
	validator *validation.Validator
	metrics   *Metrics
	hashCost  int
	newID     func() (string, error)
	now       func() time.Time
}

type Option func(*TenantManager)

func WithMetrics(m *Metrics) Option {
	return func(tm *TenantManager) {
		tm.metrics = m
	}
}

func WithValidator(v *validation.Validator) Option {
	return func(tm *TenantManager) {
		tm.validator = v
	}
}

func WithPasswordHashCost(cost int) Option {
	return func(tm *TenantManager) {
		tm.hashCost = cost
	}
}

// WithIDGenerator replaces the random tenant id source.
func WithIDGenerator(f func() (string, error)) Option {
	return func(tm *TenantManager) {
		tm.newID = f
	}
}

func WithClock(now func() time.Time) Option {
	return func(tm *TenantManager) {
		tm.now = now
	}
}

func NewTenantManager(r repo.Repo, cfg config.Tenancy, opts ...Option) *TenantManager {
	m := &TenantManager{
		repo:      r,
		cfg:       cfg,
		validator: validation.New(),
		hashCost:  bcrypt.DefaultCost,
		newID:     randomHexID,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CreateTenant registers a tenant and provisions its namespace with the
// admin account. All writes happen in one transaction: on failure nothing
// of the tenant remains, neither the registry row nor the namespace.
func (m *TenantManager) CreateTenant(ctx context.Context, in model.TenantCreate) (*CreateResult, error) {
	res, err := m.createTenant(ctx, in)

	switch {
	case err == nil:
		m.metrics.observeProvisioning(ResultSuccess)
	case errors.Is(err, errs.ErrValidation):
		m.metrics.observeProvisioning(ResultInvalid)
	case errors.Is(err, errs.ErrConflict):
		m.metrics.observeProvisioning(ResultConflict)
	default:
		m.metrics.observeProvisioning(ResultFailure)
		log.Error(ctx, "Tenant creation failed", err)
	}

	return res, err
}

func (m *TenantManager) createTenant(ctx context.Context, in model.TenantCreate) (*CreateResult, error) {
	err := m.validator.ValidateCreate(&in)
	if err != nil {
		return nil, err
	}

	reg := registry.New(m.repo)

	err = m.ensureNameAndDomainFree(ctx, reg, in.Name, in.Domain, "")
	if err != nil {
		return nil, err
	}

	tenantID, err := m.generateTenantID(ctx, reg)
	if err != nil {
		return nil, err
	}

	tenant := m.newTenant(tenantID, in)
	ctx = model.LogInjectTenant(ctx, tenant)

	var result *CreateResult

	err = m.repo.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
		txReg := registry.New(tx)

		err := txReg.Register(ctx, tenant)
		if err != nil {
			return err
		}

		log.Info(ctx, "Tenant added to registry")

		setup, err := provisioner.New(tx).CreateNamespace(ctx, tenant.ID)
		if err != nil {
			return errs.Wrap(errs.ErrProvisioningFailure, err)
		}

		scoped := bindTenant(ctx, tenant)

		admin, err := m.createAdminUser(scoped, tx, in.AdminUser)
		if err != nil {
			return errs.Wrap(errs.ErrProvisioningFailure, err)
		}

		err = writeAudit(scoped, tx, &admin.ID, AuditTenantCreated, tenant.ID, map[string]any{
			"name":      tenant.Name,
			"plan_type": tenant.PlanType,
		})
		if err != nil {
			return errs.Wrap(errs.ErrProvisioningFailure, err)
		}

		err = applyTransition(ctx, tenant, TransitionActivate)
		if err != nil {
			return errs.Wrap(errs.ErrProvisioningFailure, err)
		}

		err = txReg.Update(ctx, tenant, repo.StatusField)
		if err != nil {
			return errs.Wrap(errs.ErrProvisioningFailure, errs.Wrap(ErrActivateTenant, err))
		}

		result = &CreateResult{
			Tenant:    tenant,
			AdminUser: summarise(admin),
			SetupStatus: SetupStatus{
				SchemaCreated:         setup.SchemaCreated,
				TablesCreated:         setup.TablesCreated,
				AdminAccountActivated: admin.Status == model.UserStatusActive,
			},
		}

		return nil
	})
	if err != nil {
		return nil, errs.Wrap(ErrCreateTenant, err)
	}

	log.Info(ctx, "Tenant created")

	return result, nil
}

func (m *TenantManager) newTenant(tenantID string, in model.TenantCreate) *model.Tenant {
	limits := in.PlanType.Limits()

	tenant := &model.Tenant{
		ID:         tenantID,
		Name:       in.Name,
		Domain:     in.Domain,
		AvatarURL:  in.AvatarURL,
		Status:     model.TenantStatusPending,
		PlanType:   in.PlanType,
		MaxUsers:   limits.MaxUsers,
		MaxStorage: limits.MaxStorage,
		Settings:   in.Settings,
	}

	tenant.SchemaName = model.SchemaNameFor(tenantID)
	tenant.DomainURL = model.DomainURLFor(tenantID, m.cfg.BaseDomain)

	if in.MaxUsers != nil {
		tenant.MaxUsers = *in.MaxUsers
	}

	if in.MaxStorage != nil {
		tenant.MaxStorage = *in.MaxStorage
	}

	if len(tenant.Settings) == 0 || string(tenant.Settings) == "null" {
		tenant.Settings = json.RawMessage(`{}`)
	}

	return tenant
}

func (m *TenantManager) ensureNameAndDomainFree(
	ctx context.Context,
	reg *registry.Registry,
	name string,
	domain *string,
	excludeTenantID string,
) error {
	if name != "" {
		taken, err := reg.ExistsByName(ctx, name, excludeTenantID)
		if err != nil {
			return err
		}

		if taken {
			return errs.Wrap(errs.ErrConflict, registry.ErrNameTaken)
		}
	}

	if domain != nil && *domain != "" {
		taken, err := reg.ExistsByDomain(ctx, *domain, excludeTenantID)
		if err != nil {
			return err
		}

		if taken {
			return errs.Wrap(errs.ErrConflict, registry.ErrDomainTaken)
		}
	}

	return nil
}

// generateTenantID draws random ids until one is free in the registry and
// in the database catalog.
func (m *TenantManager) generateTenantID(ctx context.Context, reg *registry.Registry) (string, error) {
	attempts := m.cfg.IDGenerationAttempts
	if attempts == 0 {
		attempts = defaultIDGenerationAttempts
	}

	var tenantID string

	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(idGenerationDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrTenantIDCollision)
		}),
		retry.LastErrorOnly(true),
	).Do(func() error {
		candidate, err := m.newID()
		if err != nil {
			return err
		}

		_, err = reg.Lookup(ctx, candidate)
		if err == nil {
			return ErrTenantIDCollision
		}

		if !errors.Is(err, errs.ErrNotFound) {
			return err
		}

		schemaName := model.SchemaNameFor(candidate)

		taken, err := reg.Exists(ctx, schemaName)
		if err != nil {
			return err
		}

		if !taken {
			taken, err = m.repo.NamespaceExists(ctx, schemaName)
			if err != nil {
				return err
			}
		}

		if taken {
			log.Warn(ctx, "Tenant id collision", slog.String(constants.LogKeyTenantID, candidate))
			return ErrTenantIDCollision
		}

		tenantID = candidate

		return nil
	})
	if err != nil {
		return "", errs.Wrap(ErrGenerateTenantID, err)
	}

	return tenantID, nil
}

func (m *TenantManager) createAdminUser(
	ctx context.Context,
	tx repo.Repo,
	in model.AdminUserCreate,
) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), m.hashCost)
	if err != nil {
		return nil, errs.Wrap(ErrHashPassword, err)
	}

	suffix, err := randomHexID()
	if err != nil {
		return nil, errs.Wrap(ErrCreateAdminUser, err)
	}

	user := &model.User{
		ID:             uuid.New(),
		UserID:         userIDPrefix + suffix,
		Username:       localPart(in.Email),
		Email:          in.Email,
		HashedPassword: string(hashed),
		FullName:       in.FullName,
		Phone:          in.Phone,
		Status:         model.UserStatusActive,
		Role:           constants.RoleSuperAdmin,
	}

	err = tx.Create(ctx, user)
	if err != nil {
		return nil, errs.Wrap(ErrCreateAdminUser, err)
	}

	role := &model.Role{}
	ck := repo.NewCompositeKey().Where(repo.NameField, constants.RoleSuperAdmin)

	_, err = tx.First(ctx, role, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)))
	if err != nil {
		return nil, errs.Wrap(ErrSuperAdminRoleAbsent, err)
	}

	err = tx.Create(ctx, &model.UserRole{UserID: user.ID, RoleID: role.ID})
	if err != nil {
		return nil, errs.Wrap(ErrCreateAdminUser, err)
	}

	return user, nil
}

func (m *TenantManager) GetTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return registry.New(m.repo).Lookup(ctx, tenantID)
}

// ListTenants returns one page of the registry. An empty size falls back to
// the configured default and sizes above the maximum are capped.
func (m *TenantManager) ListTenants(
	ctx context.Context,
	q ListQuery,
) ([]*model.Tenant, registry.Pagination, error) {
	vErr := &errs.ValidationError{}

	page, size := normalisePage(m.cfg, q.Page, q.Size, vErr)
	filter := registry.Filter{Search: strings.TrimSpace(q.Search)}

	if q.Status != "" {
		status := model.TenantStatus(q.Status)
		if status.Validate() != nil {
			vErr.Add("status", "must be one of pending, active, suspended, inactive")
		}

		filter.Status = &status
	}

	if q.PlanType != "" {
		plan := model.PlanType(q.PlanType)
		if plan.Validate() != nil {
			vErr.Add("planType", "must be one of basic, pro, enterprise")
		}

		filter.PlanType = &plan
	}

	err := vErr.OrNil()
	if err != nil {
		return nil, registry.Pagination{}, err
	}

	return registry.New(m.repo).List(ctx, filter, page, size)
}

// UpdateTenant changes the registry fields present in the input.
func (m *TenantManager) UpdateTenant(
	ctx context.Context,
	tenantID string,
	in model.TenantUpdate,
) (*model.Tenant, error) {
	err := m.validator.ValidateUpdate(&in)
	if err != nil {
		return nil, err
	}

	var updated *model.Tenant

	err = m.repo.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
		reg := registry.New(tx)

		tenant, err := reg.Lookup(ctx, tenantID)
		if err != nil {
			return err
		}

		fields, err := m.applyUpdate(ctx, reg, tenant, in)
		if err != nil {
			return err
		}

		updated = tenant

		if len(fields) == 0 {
			return nil
		}

		err = reg.Update(ctx, tenant, fields...)
		if err != nil {
			return err
		}

		if tenant.Status == model.TenantStatusInactive {
			return nil
		}

		return writeAudit(bindTenant(ctx, tenant), tx, nil, AuditTenantUpdated, tenant.ID,
			map[string]any{"fields": fields})
	})
	if err != nil {
		return nil, errs.Wrap(ErrUpdateTenant, err)
	}

	return updated, nil
}

func (m *TenantManager) applyUpdate(
	ctx context.Context,
	reg *registry.Registry,
	tenant *model.Tenant,
	in model.TenantUpdate,
) ([]repo.QueryField, error) {
	var fields []repo.QueryField

	if in.Name != nil && *in.Name != tenant.Name {
		err := m.ensureNameAndDomainFree(ctx, reg, *in.Name, nil, tenant.ID)
		if err != nil {
			return nil, err
		}

		tenant.Name = *in.Name
		fields = append(fields, repo.NameField)
	}

	if in.Domain != nil {
		err := m.ensureNameAndDomainFree(ctx, reg, "", in.Domain, tenant.ID)
		if err != nil {
			return nil, err
		}

		tenant.Domain = nilIfEmpty(in.Domain)
		fields = append(fields, repo.DomainField)
	}

	if in.AvatarURL != nil {
		tenant.AvatarURL = nilIfEmpty(in.AvatarURL)
		fields = append(fields, repo.AvatarURLField)
	}

	if in.PlanType != nil {
		tenant.PlanType = *in.PlanType
		fields = append(fields, repo.PlanTypeField)
	}

	if in.MaxUsers != nil {
		tenant.MaxUsers = *in.MaxUsers
		fields = append(fields, repo.MaxUsersField)
	}

	if in.MaxStorage != nil {
		tenant.MaxStorage = *in.MaxStorage
		fields = append(fields, repo.MaxStorageField)
	}

	if len(in.Settings) > 0 {
		tenant.Settings = in.Settings
		if string(in.Settings) == "null" {
			tenant.Settings = json.RawMessage(`{}`)
		}

		fields = append(fields, repo.SettingsField)
	}

	return fields, nil
}

// DeleteTenant soft deletes the tenant. The namespace is kept until purged.
func (m *TenantManager) DeleteTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return m.transition(ctx, tenantID, TransitionDeactivate, AuditTenantDeactivated)
}

func (m *TenantManager) SuspendTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return m.transition(ctx, tenantID, TransitionSuspend, AuditTenantSuspended)
}

func (m *TenantManager) ResumeTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return m.transition(ctx, tenantID, TransitionActivate, AuditTenantResumed)
}

func (m *TenantManager) transition(
	ctx context.Context,
	tenantID string,
	transition Transition,
	action string,
) (*model.Tenant, error) {
	var tenant *model.Tenant

	err := m.repo.Transaction(ctx, func(ctx context.Context, tx repo.Repo) error {
		reg := registry.New(tx)

		var err error

		tenant, err = reg.Lookup(ctx, tenantID)
		if err != nil {
			return err
		}

		from := tenant.Status

		err = applyTransition(ctx, tenant, transition)
		if err != nil {
			return err
		}

		fields := []repo.QueryField{repo.StatusField}

		if tenant.Status == model.TenantStatusInactive {
			now := m.now().UTC()
			tenant.DeactivatedAt = &now
			fields = append(fields, repo.DeactivatedField)
		}

		err = reg.Update(ctx, tenant, fields...)
		if err != nil {
			return err
		}

		return writeAudit(bindTenant(ctx, tenant), tx, nil, action, tenant.ID, map[string]any{
			"from": from,
			"to":   tenant.Status,
		})
	})
	if err != nil {
		return nil, errs.Wrap(ErrUpdateTenant, err)
	}

	log.Info(model.LogInjectTenant(ctx, tenant), "Tenant status changed",
		slog.String("transition", transition.String()))

	return tenant, nil
}

// PurgeTenant drops the namespace of a soft deleted tenant. The registry
// row stays so the tenant id is never reused.
func (m *TenantManager) PurgeTenant(ctx context.Context, tenantID string) error {
	tenant, err := registry.New(m.repo).Lookup(ctx, tenantID)
	if err != nil {
		return err
	}

	return m.purge(ctx, tenant)
}

func (m *TenantManager) purge(ctx context.Context, tenant *model.Tenant) error {
	if tenant.Status != model.TenantStatusInactive {
		return errs.Wrap(errs.ErrInvalidStatusTransition, ErrPurgeNotInactive)
	}

	ctx = model.LogInjectTenant(ctx, tenant)

	err := provisioner.New(m.repo).DropNamespace(ctx, tenant.ID)
	if err != nil {
		return errs.Wrap(ErrPurgeTenant, err)
	}

	m.metrics.observePurge()
	log.Info(ctx, "Tenant namespace purged")

	return nil
}

// PurgeExpired drops the namespaces of tenants deactivated longer than
// retention ago and returns how many were dropped.
func (m *TenantManager) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := m.now().UTC().Add(-retention)
	ck := repo.NewCompositeKey().
		Where(repo.StatusField, model.TenantStatusInactive).
		Where(repo.DeactivatedField, cutoff, repo.Lt)
	query := repo.NewQuery().
		Where(repo.NewCompositeKeyGroup(ck)).
		Order(repo.OrderField{Field: repo.IDField, Direction: repo.Asc})

	prov := provisioner.New(m.repo)
	purged := 0

	err := repo.ProcessInBatch(ctx, m.repo, query, repo.DefaultLimit, func(tenants []*model.Tenant) error {
		for _, t := range tenants {
			exists, err := prov.NamespaceExists(ctx, t.ID)
			if err != nil {
				return err
			}

			if !exists {
				continue
			}

			err = m.purge(ctx, t)
			if err != nil {
				return err
			}

			purged++
		}

		return nil
	})

	return purged, err
}

// RefreshStatusMetrics publishes the number of tenants per status.
func (m *TenantManager) RefreshStatusMetrics(ctx context.Context) (map[model.TenantStatus]int, error) {
	counts, err := registry.New(m.repo).CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	m.metrics.setStatusCounts(counts)

	return counts, nil
}

func bindTenant(ctx context.Context, tenant *model.Tenant) context.Context {
	return tenancyctx.BindScope(ctx, tenancyctx.Scope{
		TenantID:   tenant.ID,
		SchemaName: tenant.SchemaName,
	})
}

func summarise(u *model.User) AdminUserSummary {
	return AdminUserSummary{
		ID:       u.ID,
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Status:   u.Status,
	}
}

// normalisePage applies the paging defaults and records invalid values.
func normalisePage(cfg config.Tenancy, page, size int, vErr *errs.ValidationError) (int, int) {
	if page == 0 {
		page = constants.DefaultPage
	}

	if page < 0 {
		vErr.Add("page", "must be a positive number")
	}

	defaultSize := cfg.DefaultPageSize
	if defaultSize <= 0 {
		defaultSize = constants.DefaultPageSize
	}

	maxSize := cfg.MaxPageSize
	if maxSize <= 0 {
		maxSize = constants.MaxPageSize
	}

	switch {
	case size == 0:
		size = defaultSize
	case size < 0:
		vErr.Add("size", "must be a positive number")
	case size > maxSize:
		size = maxSize
	}

	// the offset (page-1)*size must fit in an int
	if size > 0 && page > math.MaxInt/size {
		vErr.Add("page", "is out of range")
	}

	return page, size
}

func randomHexID() (string, error) {
	b := make([]byte, constants.TenantIDLength/2)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// localPart derives a username from the email, clipped to the column width.
func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")

	runes := []rune(local)
	if len(runes) > maxUsernameLength {
		return string(runes[:maxUsernameLength])
	}

	return local
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}
