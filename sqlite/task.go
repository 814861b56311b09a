package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ serpwatch.TaskService = (*TaskService)(nil)

// TaskService implements serpwatch.TaskService using SQLite.
type TaskService struct {
	db *DB

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *DB) *TaskService {
	return &TaskService{db: db, Now: time.Now}
}

// CreateTask creates a new task.
func (s *TaskService) CreateTask(ctx context.Context, task *serpwatch.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	task.ID = uuid.New().String()
	task.CreatedAt = s.Now().UTC()
	if task.Status == "" {
		task.Status = serpwatch.TaskPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, keyword, engine, status, result_count, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Keyword, task.Engine, string(task.Status), task.ResultCount, task.ErrorMessage,
		formatTime(task.CreatedAt))

	return err
}

// UpdateTask applies upd to an existing task.
func (s *TaskService) UpdateTask(ctx context.Context, id string, upd serpwatch.TaskUpdate) (*serpwatch.Task, error) {
	task, err := s.findTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	if upd.Status != nil {
		task.Status = *upd.Status
		switch {
		case task.Status == serpwatch.TaskRunning:
			task.StartedAt = &now
		case task.Status.Terminal():
			task.CompletedAt = &now
		}
	}
	if upd.ResultCount != nil {
		task.ResultCount = *upd.ResultCount
	}
	if upd.ErrorMessage != nil {
		task.ErrorMessage = *upd.ErrorMessage
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, result_count = ?, error_message = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`, string(task.Status), task.ResultCount, task.ErrorMessage,
		nullTime(task.StartedAt), nullTime(task.CompletedAt), id)
	if err != nil {
		return nil, err
	}

	return task, nil
}

// FindTasks retrieves tasks matching the filter, newest first.
func (s *TaskService) FindTasks(ctx context.Context, filter serpwatch.TaskFilter) ([]*serpwatch.Task, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, keyword, engine, status, result_count, error_message, created_at, started_at, completed_at FROM tasks WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Keyword != nil {
		query.WriteString(" AND keyword = ?")
		args = append(args, *filter.Keyword)
	}
	if filter.Engine != nil {
		query.WriteString(" AND engine = ?")
		args = append(args, *filter.Engine)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*serpwatch.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (s *TaskService) findTaskByID(ctx context.Context, id string) (*serpwatch.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, keyword, engine, status, result_count, error_message, created_at, started_at, completed_at
		FROM tasks
		WHERE id = ?
	`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, serpwatch.Errorf(serpwatch.ENOTFOUND, "task not found")
	}
	return task, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*serpwatch.Task, error) {
	var task serpwatch.Task
	var status, createdAt string
	var startedAt, completedAt sql.NullString

	if err := row.Scan(&task.ID, &task.Keyword, &task.Engine, &status, &task.ResultCount,
		&task.ErrorMessage, &createdAt, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	task.Status = serpwatch.TaskStatus(status)

	var err error
	if task.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if task.StartedAt, err = parseNullTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if task.CompletedAt, err = parseNullTime(completedAt, "completed_at"); err != nil {
		return nil, err
	}
	return &task, nil
}
