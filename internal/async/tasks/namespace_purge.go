package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
	asyncUtils "github.com/openkcm/tenancy/utils/async"
)

type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

// NamespacePurger drops the namespaces of tenants that stayed inactive
// longer than the retention.
type NamespacePurger struct {
	purger    ExpiredPurger
	retention time.Duration
}

func NewNamespacePurger(purger ExpiredPurger, retention time.Duration) *NamespacePurger {
	return &NamespacePurger{
		purger:    purger,
		retention: retention,
	}
}

func (np *NamespacePurger) ProcessTask(ctx context.Context, task *asynq.Task) error {
	ctx = log.InjectTask(ctx, task)

	retention, err := np.retentionFor(task)
	if err != nil {
		log.Error(ctx, "Discarding purge task with invalid payload", err)
		return errs.Wrap(asynq.SkipRetry, err)
	}

	if retention <= 0 {
		log.Info(ctx, "Namespace purge is disabled")
		return nil
	}

	log.Info(ctx, "Starting Namespace Purge Task", slog.Duration("retention", retention))

	purged, err := np.purger.PurgeExpired(ctx, retention)
	if err != nil {
		log.Error(ctx, "Error during namespace purge", err, slog.Int("purged", purged))
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Namespace Purge Task completed", slog.Int("purged", purged))

	return nil
}

func (np *NamespacePurger) TaskType() string {
	return config.TypeNamespacePurge
}

func (np *NamespacePurger) retentionFor(task *asynq.Task) (time.Duration, error) {
	if task == nil || len(task.Payload()) == 0 {
		return np.retention, nil
	}

	payload, err := asyncUtils.ParsePurgePayload(task.Payload())
	if err != nil {
		return 0, err
	}

	return payload.RetentionDuration()
}
