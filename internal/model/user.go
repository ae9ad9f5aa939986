package model

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User is an account inside a tenant namespace.
type User struct {
	AutoTimeModel

	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Username       string     `gorm:"type:varchar(50);not null"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	HashedPassword string     `gorm:"type:varchar(255);not null"`
	FullName       string     `gorm:"type:varchar(100)"`
	Phone          *string    `gorm:"type:varchar(20)"`
	AvatarURL      *string    `gorm:"type:varchar(500)"`
	Status         UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Role           string     `gorm:"type:varchar(50);not null;default:'user'"`

	LastLoginAt     *time.Time
	EmailVerifiedAt *time.Time
	PhoneVerifiedAt *time.Time
}

func (User) TableName() string   { return "users" }
func (User) IsSharedModel() bool { return false }
