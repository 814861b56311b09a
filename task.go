package serpwatch

import (
	"context"
	"time"
)

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

// TaskStatus constants. Terminal statuses mirror RunStatus.
const (
	TaskPending        TaskStatus = "pending"
	TaskRunning        TaskStatus = "running"
	TaskCompleted      TaskStatus = TaskStatus(StatusCompleted)
	TaskStoppedEmpty   TaskStatus = TaskStatus(StatusStoppedEmpty)
	TaskStoppedBlocked TaskStatus = TaskStatus(StatusStoppedBlocked)
	TaskStoppedError   TaskStatus = TaskStatus(StatusStoppedError)
)

// Terminal reports whether the task has finished.
func (s TaskStatus) Terminal() bool {
	return s != TaskPending && s != TaskRunning
}

// Task records one (keyword, engine) run.
type Task struct {
	ID           string     `json:"id"`
	Keyword      string     `json:"keyword"`
	Engine       string     `json:"engine"`
	Status       TaskStatus `json:"status"`
	ResultCount  int        `json:"resultCount"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Validate returns an error if the task contains invalid fields.
func (t *Task) Validate() error {
	if t.Keyword == "" {
		return Errorf(EINVALID, "task keyword required")
	}
	if t.Engine == "" {
		return Errorf(EINVALID, "task engine required")
	}
	return nil
}

// TaskService represents a service for managing crawl tasks.
type TaskService interface {
	// CreateTask creates a pending task, assigning ID and CreatedAt.
	CreateTask(ctx context.Context, task *Task) error

	// UpdateTask applies upd to the task.
	// Returns ENOTFOUND if the task does not exist.
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*Task, error)

	// FindTasks retrieves tasks matching the filter, newest first.
	FindTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
}

// TaskUpdate represents a set of fields to update on a task. Moving to
// TaskRunning stamps StartedAt; moving to a terminal status stamps
// CompletedAt.
type TaskUpdate struct {
	Status       *TaskStatus
	ResultCount  *int
	ErrorMessage *string
}

// TaskFilter represents a filter for FindTasks.
type TaskFilter struct {
	ID      *string     `json:"id"`
	Keyword *string     `json:"keyword"`
	Engine  *string     `json:"engine"`
	Status  *TaskStatus `json:"status"`

	Limit int `json:"limit"`
}
