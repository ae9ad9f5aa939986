package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/model"
)

type StatusCounter interface {
	RefreshStatusMetrics(ctx context.Context) (map[model.TenantStatus]int, error)
}

// StatusReporter republishes the tenant count per status.
type StatusReporter struct {
	counter StatusCounter
}

func NewStatusReporter(counter StatusCounter) *StatusReporter {
	return &StatusReporter{counter: counter}
}

func (sr *StatusReporter) ProcessTask(ctx context.Context, task *asynq.Task) error {
	ctx = log.InjectTask(ctx, task)

	counts, err := sr.counter.RefreshStatusMetrics(ctx)
	if err != nil {
		log.Error(ctx, "Error refreshing tenant status metrics", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	attrs := make([]slog.Attr, 0, len(counts))
	for _, status := range model.TenantStatuses() {
		attrs = append(attrs, slog.Int(status.String(), counts[status]))
	}

	log.Debug(ctx, "Tenant status metrics refreshed", attrs...)

	return nil
}

func (sr *StatusReporter) TaskType() string {
	return config.TypeTenantMetrics
}
