package tenant

import (
	"encoding/json"

	"github.com/openkcm/tenancy/internal/api/transform"
	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
)

type AdminUserRequest struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password"` //nolint:gosec
}

// CreateRequest is the body of a tenant registration.
type CreateRequest struct {
	Name       string           `json:"name"`
	Domain     *string          `json:"domain,omitempty"`
	AvatarURL  *string          `json:"avatar_url,omitempty"`
	PlanType   string           `json:"plan_type,omitempty"`
	MaxUsers   *int             `json:"max_users,omitempty"`
	MaxStorage *int64           `json:"max_storage,omitempty"`
	Settings   json.RawMessage  `json:"settings,omitempty"`
	AdminUser  AdminUserRequest `json:"admin_user"`
}

// UpdateRequest is the body of a tenant update. Absent fields are kept.
type UpdateRequest struct {
	Name       *string         `json:"name,omitempty"`
	Domain     *string         `json:"domain,omitempty"`
	AvatarURL  *string         `json:"avatar_url,omitempty"`
	PlanType   *string         `json:"plan_type,omitempty"`
	MaxUsers   *int            `json:"max_users,omitempty"`
	MaxStorage *int64          `json:"max_storage,omitempty"`
	Settings   json.RawMessage `json:"settings,omitempty"`
}

type Tenant struct {
	TenantID      string          `json:"tenant_id"`
	Name          string          `json:"name"`
	Domain        *string         `json:"domain"`
	AvatarURL     *string         `json:"avatar_url"`
	Status        string          `json:"status"`
	PlanType      string          `json:"plan_type"`
	MaxUsers      int             `json:"max_users"`
	MaxStorage    int64           `json:"max_storage"`
	SchemaName    string          `json:"schema_name"`
	DomainURL     string          `json:"domain_url"`
	Settings      json.RawMessage `json:"settings"`
	CreatedAt     *string         `json:"created_at"`
	UpdatedAt     *string         `json:"updated_at"`
	DeactivatedAt *string         `json:"deactivated_at,omitempty"`
}

type AdminUser struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

type SetupInstructions struct {
	SchemaCreated         bool `json:"schema_created"`
	TablesCreated         bool `json:"tables_created"`
	AdminAccountActivated bool `json:"admin_account_activated"`
}

type Created struct {
	Tenant            Tenant            `json:"tenant"`
	AdminUser         AdminUser         `json:"admin_user"`
	SetupInstructions SetupInstructions `json:"setup_instructions"`
}

type List struct {
	Tenants    []Tenant            `json:"tenants"`
	Pagination registry.Pagination `json:"pagination"`
}

// FromCreateRequest maps a registration body to the manager input. An
// empty plan type is left for validation to default.
func FromCreateRequest(req CreateRequest) model.TenantCreate {
	return model.TenantCreate{
		Name:       req.Name,
		Domain:     req.Domain,
		AvatarURL:  req.AvatarURL,
		PlanType:   model.PlanType(req.PlanType),
		MaxUsers:   req.MaxUsers,
		MaxStorage: req.MaxStorage,
		Settings:   req.Settings,
		AdminUser: model.AdminUserCreate{
			FullName: req.AdminUser.FullName,
			Email:    req.AdminUser.Email,
			Password: req.AdminUser.Password,
			Phone:    req.AdminUser.Phone,
		},
	}
}

func FromUpdateRequest(req UpdateRequest) model.TenantUpdate {
	update := model.TenantUpdate{
		Name:       req.Name,
		Domain:     req.Domain,
		AvatarURL:  req.AvatarURL,
		MaxUsers:   req.MaxUsers,
		MaxStorage: req.MaxStorage,
		Settings:   req.Settings,
	}

	if req.PlanType != nil {
		plan := model.PlanType(*req.PlanType)
		update.PlanType = &plan
	}

	return update
}

// ToAPI transforms a registry record to its API representation.
func ToAPI(t model.Tenant) (*Tenant, error) {
	settings := t.Settings
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}

	return &Tenant{
		TenantID:      t.ID,
		Name:          t.Name,
		Domain:        t.Domain,
		AvatarURL:     t.AvatarURL,
		Status:        t.Status.String(),
		PlanType:      string(t.PlanType),
		MaxUsers:      t.MaxUsers,
		MaxStorage:    t.MaxStorage,
		SchemaName:    t.SchemaName,
		DomainURL:     t.DomainURL,
		Settings:      settings,
		CreatedAt:     transform.FormatTime(&t.CreatedAt),
		UpdatedAt:     transform.FormatTime(&t.UpdatedAt),
		DeactivatedAt: transform.FormatTime(t.DeactivatedAt),
	}, nil
}

func CreatedToAPI(res *manager.CreateResult) (*Created, error) {
	t, err := ToAPI(*res.Tenant)
	if err != nil {
		return nil, err
	}

	return &Created{
		Tenant: *t,
		AdminUser: AdminUser{
			ID:       res.AdminUser.ID.String(),
			UserID:   res.AdminUser.UserID,
			Username: res.AdminUser.Username,
			Email:    res.AdminUser.Email,
			FullName: res.AdminUser.FullName,
			Role:     res.AdminUser.Role,
			Status:   string(res.AdminUser.Status),
		},
		SetupInstructions: SetupInstructions{
			SchemaCreated:         res.SetupStatus.SchemaCreated,
			TablesCreated:         res.SetupStatus.TablesCreated,
			AdminAccountActivated: res.SetupStatus.AdminAccountActivated,
		},
	}, nil
}

func ListToAPI(tenants []*model.Tenant, page registry.Pagination) (*List, error) {
	values, err := transform.ToList(tenants, ToAPI)
	if err != nil {
		return nil, err
	}

	return &List{Tenants: values, Pagination: page}, nil
}
