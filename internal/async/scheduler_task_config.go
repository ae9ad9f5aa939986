package async

import (
	"github.com/hibiken/asynq"

	"github.com/openkcm/tenancy/internal/config"
)

// ScheduledTaskConfigProvider implements asynq PeriodicTaskConfigProvider interface.
type ScheduledTaskConfigProvider struct {
	Config *config.Config
}

// GetConfigs returns one periodic task per configured task with a cronspec.
func (p *ScheduledTaskConfigProvider) GetConfigs() ([]*asynq.PeriodicTaskConfig, error) {
	tasks := p.Config.Scheduler.Tasks

	configs := make([]*asynq.PeriodicTaskConfig, 0, len(tasks))
	for _, cfg := range tasks {
		if cfg.Cronspec == "" {
			continue
		}

		configs = append(configs, &asynq.PeriodicTaskConfig{
			Cronspec: cfg.Cronspec,
			Task: asynq.NewTask(
				cfg.TaskType,
				nil,
				asynq.MaxRetry(cfg.Retries),
			),
		})
	}

	return configs, nil
}
