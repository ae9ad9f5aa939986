package commands

import (
	"time"

	"github.com/hibiken/asynq"
)

type MockInspector struct{}

func (m *MockInspector) Queues() ([]string, error) {
	return []string{"default", "critical"}, nil
}

func (m *MockInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Size: 42}, nil
}

func (m *MockInspector) History(_ string, _ int) ([]*asynq.DailyStats, error) {
	return []*asynq.DailyStats{
		{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Processed: 10, Failed: 2},
	}, nil
}

func (m *MockInspector) ListPendingTasks(_ string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "pending1", Type: "tenant:purge"}}, nil
}

func (m *MockInspector) ListActiveTasks(_ string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "active1", Type: "tenant:metrics"}}, nil
}

func (m *MockInspector) ListCompletedTasks(_ string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "completed1", Type: "tenant:purge"}}, nil
}

func (m *MockInspector) ListArchivedTasks(_ string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "archived1", Type: "tenant:purge"}}, nil
}
