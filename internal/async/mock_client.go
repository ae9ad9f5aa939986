package async

import (
	"github.com/hibiken/asynq"
)

// MockClient records enqueued tasks instead of sending them to redis.
type MockClient struct {
	Tasks []*asynq.Task
	Error error
}

func (m *MockClient) Close() error {
	return nil
}

func (m *MockClient) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	m.Tasks = append(m.Tasks, task)
	if m.Error != nil {
		return nil, m.Error
	}

	return &asynq.TaskInfo{ID: "mock-task-id", Type: task.Type()}, nil
}

// LastTask returns the most recently enqueued task, or nil.
func (m *MockClient) LastTask() *asynq.Task {
	if len(m.Tasks) == 0 {
		return nil
	}

	return m.Tasks[len(m.Tasks)-1]
}
