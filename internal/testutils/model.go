package testutils

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/utils/ptr"
)

const TestBaseDomain = "example.com"

// NewMutator returns a builder producing copies of the base value with
// every given mutation applied in order.
func NewMutator[T any](base func() T) func(...func(*T)) T {
	return func(mutations ...func(*T)) T {
		v := base()
		for _, m := range mutations {
			if m != nil {
				m(&v)
			}
		}

		return v
	}
}

// NewTenantID returns a random tenant id.
func NewTenantID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)

	return hex.EncodeToString(b)
}

func NewTenant(m func(*model.Tenant)) *model.Tenant {
	mut := NewMutator(func() model.Tenant {
		id := NewTenantID()

		return model.Tenant{
			TenantModel: multitenancy.TenantModel{
				DomainURL:  model.DomainURLFor(id, TestBaseDomain),
				SchemaName: model.SchemaNameFor(id),
			},
			ID:         id,
			Name:       "Tenant " + id,
			Status:     model.TenantStatusPending,
			PlanType:   model.PlanTypeBasic,
			MaxUsers:   model.PlanTypeBasic.Limits().MaxUsers,
			MaxStorage: model.PlanTypeBasic.Limits().MaxStorage,
			Settings:   json.RawMessage(`{}`),
		}
	})

	t := mut(m)

	// id driven fields follow a mutated id
	t.SchemaName = model.SchemaNameFor(t.ID)
	t.DomainURL = model.DomainURLFor(t.ID, TestBaseDomain)

	return &t
}

func NewUser(m func(*model.User)) *model.User {
	mut := NewMutator(func() model.User {
		id := uuid.New()

		return model.User{
			ID:             id,
			UserID:         "user_" + id.String()[:8],
			Username:       "user-" + id.String()[:8],
			Email:          id.String()[:8] + "@example.com",
			HashedPassword: "not-a-hash",
			FullName:       "Test User",
			Status:         model.UserStatusActive,
			Role:           "user",
		}
	})

	return ptr.PointTo(mut(m))
}

func NewAuditLog(m func(*model.AuditLog)) *model.AuditLog {
	mut := NewMutator(func() model.AuditLog {
		return model.AuditLog{
			ID:           uuid.New(),
			Action:       "test.action",
			ResourceType: "test",
			ResourceID:   uuid.NewString(),
			Details:      json.RawMessage(`{}`),
			CreatedAt:    time.Now().UTC(),
		}
	})

	return ptr.PointTo(mut(m))
}
