package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	AutoTimeModel

	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string          `gorm:"type:text"`
	Permissions json.RawMessage `gorm:"type:jsonb"`
	IsSystem    bool            `gorm:"not null;default:false"`
}

func (Role) TableName() string   { return "roles" }
func (Role) IsSharedModel() bool { return false }

// UserRole links a user to a role. A user holds a role at most once.
type UserRole struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role"`
	RoleID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role"`
	AssignedBy *uuid.UUID `gorm:"type:uuid"`
	AssignedAt time.Time  `gorm:"not null"`
}

func (UserRole) TableName() string   { return "user_roles" }
func (UserRole) IsSharedModel() bool { return false }

func (u *UserRole) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	if u.AssignedAt.IsZero() {
		u.AssignedAt = time.Now().UTC()
	}

	return nil
}
