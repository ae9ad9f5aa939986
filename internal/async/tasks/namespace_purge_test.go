package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/async/tasks"
	"github.com/openkcm/tenancy/internal/config"
	asyncUtils "github.com/openkcm/tenancy/utils/async"
)

var errPurge = errors.New("purge failed")

type purgerMock struct {
	calls     int
	retention time.Duration
	err       error
}

func (p *purgerMock) PurgeExpired(_ context.Context, retention time.Duration) (int, error) {
	p.calls++
	p.retention = retention

	return 2, p.err
}

func TestNamespacePurger(t *testing.T) {
	ctx := t.Context()

	t.Run("Should purge with configured retention", func(t *testing.T) {
		mock := &purgerMock{}
		purger := tasks.NewNamespacePurger(mock, 24*time.Hour)

		err := purger.ProcessTask(ctx, asynq.NewTask(purger.TaskType(), nil))
		require.NoError(t, err)
		assert.Equal(t, 1, mock.calls)
		assert.Equal(t, 24*time.Hour, mock.retention)
	})

	t.Run("Should prefer payload retention", func(t *testing.T) {
		mock := &purgerMock{}
		purger := tasks.NewNamespacePurger(mock, 24*time.Hour)

		payload, err := asyncUtils.NewPurgePayload(time.Hour).ToBytes()
		require.NoError(t, err)

		err = purger.ProcessTask(ctx, asynq.NewTask(purger.TaskType(), payload))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, mock.retention)
	})

	t.Run("Should skip when disabled", func(t *testing.T) {
		mock := &purgerMock{}
		purger := tasks.NewNamespacePurger(mock, 0)

		err := purger.ProcessTask(ctx, asynq.NewTask(purger.TaskType(), nil))
		require.NoError(t, err)
		assert.Zero(t, mock.calls)
	})

	t.Run("Should not retry invalid payload", func(t *testing.T) {
		mock := &purgerMock{}
		purger := tasks.NewNamespacePurger(mock, time.Hour)

		err := purger.ProcessTask(ctx, asynq.NewTask(purger.TaskType(), []byte(`{"retention":"later"}`)))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.ErrorIs(t, err, asyncUtils.ErrInvalidRetention)
		assert.Zero(t, mock.calls)
	})

	t.Run("Should wrap purge errors", func(t *testing.T) {
		mock := &purgerMock{err: errPurge}
		purger := tasks.NewNamespacePurger(mock, time.Hour)

		err := purger.ProcessTask(ctx, asynq.NewTask(purger.TaskType(), nil))
		assert.ErrorIs(t, err, tasks.ErrRunningTask)
		assert.ErrorIs(t, err, errPurge)
	})

	t.Run("Should report task type", func(t *testing.T) {
		assert.Equal(t, config.TypeNamespacePurge, tasks.NewNamespacePurger(nil, 0).TaskType())
	})
}
