// Package namespace renders the records kept inside a tenant namespace.
package namespace

import (
	"encoding/json"

	"github.com/openkcm/tenancy/internal/api/transform"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/registry"
)

// User never carries the password hash.
type User struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	Phone       *string `json:"phone"`
	AvatarURL   *string `json:"avatar_url"`
	Status      string  `json:"status"`
	Role        string  `json:"role"`
	LastLoginAt *string `json:"last_login_at"`
	CreatedAt   *string `json:"created_at"`
}

type Role struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Permissions json.RawMessage `json:"permissions"`
	IsSystem    bool            `json:"is_system"`
}

type AuditLog struct {
	ID           string          `json:"id"`
	UserID       *string         `json:"user_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Details      json.RawMessage `json:"details"`
	IPAddress    *string         `json:"ip_address"`
	UserAgent    string          `json:"user_agent"`
	CreatedAt    *string         `json:"created_at"`
}

// Page is a paginated listing of namespace records.
type Page[T any] struct {
	Items      []T                 `json:"items"`
	Pagination registry.Pagination `json:"pagination"`
}

func UserToAPI(u model.User) (*User, error) {
	return &User{
		ID:          u.ID.String(),
		UserID:      u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		AvatarURL:   u.AvatarURL,
		Status:      string(u.Status),
		Role:        u.Role,
		LastLoginAt: transform.FormatTime(u.LastLoginAt),
		CreatedAt:   transform.FormatTime(&u.CreatedAt),
	}, nil
}

func RoleToAPI(r model.Role) (*Role, error) {
	return &Role{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		IsSystem:    r.IsSystem,
	}, nil
}

func AuditLogToAPI(a model.AuditLog) (*AuditLog, error) {
	var userID *string
	if a.UserID != nil {
		s := a.UserID.String()
		userID = &s
	}

	return &AuditLog{
		ID:           a.ID.String(),
		UserID:       userID,
		Action:       a.Action,
		ResourceType: a.ResourceType,
		ResourceID:   a.ResourceID,
		Details:      a.Details,
		IPAddress:    a.IPAddress,
		UserAgent:    a.UserAgent,
		CreatedAt:    transform.FormatTime(&a.CreatedAt),
	}, nil
}

// ToPage transforms one page of records.
func ToPage[T any, K any](items []*T, page registry.Pagination, toAPI func(T) (*K, error)) (*Page[K], error) {
	values, err := transform.ToList(items, toAPI)
	if err != nil {
		return nil, err
	}

	return &Page[K]{Items: values, Pagination: page}, nil
}
