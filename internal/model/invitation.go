package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// Invitation is a pending request for someone to join a tenant.
// Delivering it is out of scope; only the record is kept.
type Invitation struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Email      string           `gorm:"type:varchar(255);not null"`
	RoleID     *uuid.UUID       `gorm:"type:uuid"`
	Token      string           `gorm:"type:varchar(255);not null;uniqueIndex"`
	Status     InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ExpiresAt  time.Time        `gorm:"not null"`
	InvitedBy  uuid.UUID        `gorm:"type:uuid;not null"`
	AcceptedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

func (Invitation) TableName() string   { return "tenant_invitations" }
func (Invitation) IsSharedModel() bool { return false }

func (i *Invitation) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}

	if i.Token == "" {
		i.Token = uuid.NewString()
	}

	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}

	return nil
}

// IsExpired reports whether a pending invitation is past its expiry.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.Status == InvitationStatusPending && now.After(i.ExpiresAt)
}
