package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID       *uuid.UUID      `gorm:"type:uuid;index"`
	Action       string          `gorm:"type:varchar(100);not null"`
	ResourceType string          `gorm:"type:varchar(50)"`
	ResourceID   string          `gorm:"type:varchar(50)"`
	Details      json.RawMessage `gorm:"type:jsonb"`
	IPAddress    *string         `gorm:"type:inet"`
	UserAgent    string          `gorm:"type:text"`
	CreatedAt    time.Time       `gorm:"not null;index"`
}

func (AuditLog) TableName() string   { return "audit_logs" }
func (AuditLog) IsSharedModel() bool { return false }

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	return nil
}
