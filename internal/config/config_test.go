package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/testutils"
)

func TestValidateScheduler(t *testing.T) {
	t.Run("Should successfully validate", func(t *testing.T) {
		scheduler := config.Scheduler{
			Tasks: []config.Task{
				{TaskType: config.TypeNamespacePurge, Cronspec: "@daily"},
				{TaskType: config.TypeTenantMetrics, Cronspec: "@every 1m"},
			},
		}
		assert.NoError(t, scheduler.Validate())
	})

	t.Run("Should fail on unknown task", func(t *testing.T) {
		scheduler := config.Scheduler{
			Tasks: []config.Task{{TaskType: "UnknownTask", Cronspec: "@daily"}},
		}
		assert.ErrorIs(t, scheduler.Validate(), config.ErrNonDefinedTaskType)
	})

	t.Run("Should fail on repeated task", func(t *testing.T) {
		scheduler := config.Scheduler{
			Tasks: []config.Task{
				{TaskType: config.TypeNamespacePurge, Cronspec: "@daily"},
				{TaskType: config.TypeNamespacePurge, Cronspec: "@hourly"},
			},
		}
		assert.ErrorIs(t, scheduler.Validate(), config.ErrRepeatedTaskType)
	})
}

func TestValidateTenancy(t *testing.T) {
	mutator := testutils.NewMutator(func() config.Tenancy {
		return config.Tenancy{
			BaseDomain:      "example.com",
			DefaultPageSize: 20,
			MaxPageSize:     100,
			PurgeRetention:  24 * time.Hour,
		}
	})

	tests := []struct {
		name   string
		config config.Tenancy
		expErr error
	}{
		{
			name:   "Valid configuration",
			config: mutator(),
		},
		{
			name: "Empty base domain",
			config: mutator(func(c *config.Tenancy) {
				c.BaseDomain = " "
			}),
			expErr: config.ErrEmptyBaseDomain,
		},
		{
			name: "Page size above max",
			config: mutator(func(c *config.Tenancy) {
				c.DefaultPageSize = 101
			}),
			expErr: config.ErrInvalidPageSize,
		},
		{
			name: "Negative retention",
			config: mutator(func(c *config.Tenancy) {
				c.PurgeRetention = -time.Second
			}),
			expErr: config.ErrInvalidRetention,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expErr != nil {
				assert.ErrorIs(t, err, tt.expErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}
