package mock

import (
	"context"
	"time"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.TaskService = (*TaskService)(nil)

// TaskService is a mock implementation of serpwatch.TaskService.
type TaskService struct {
	CreateTaskFn func(ctx context.Context, task *serpwatch.Task) error
	UpdateTaskFn func(ctx context.Context, id string, upd serpwatch.TaskUpdate) (*serpwatch.Task, error)
	FindTasksFn  func(ctx context.Context, filter serpwatch.TaskFilter) ([]*serpwatch.Task, error)
}

func (s *TaskService) CreateTask(ctx context.Context, task *serpwatch.Task) error {
	return s.CreateTaskFn(ctx, task)
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, upd serpwatch.TaskUpdate) (*serpwatch.Task, error) {
	return s.UpdateTaskFn(ctx, id, upd)
}

func (s *TaskService) FindTasks(ctx context.Context, filter serpwatch.TaskFilter) ([]*serpwatch.Task, error) {
	return s.FindTasksFn(ctx, filter)
}

var _ serpwatch.KeywordService = (*KeywordService)(nil)

// KeywordService is a mock implementation of serpwatch.KeywordService.
type KeywordService struct {
	AddKeywordFn       func(ctx context.Context, text string) (*serpwatch.Keyword, error)
	ActiveKeywordsFn   func(ctx context.Context) ([]string, error)
	SetKeywordActiveFn func(ctx context.Context, text string, active bool) error
}

func (s *KeywordService) AddKeyword(ctx context.Context, text string) (*serpwatch.Keyword, error) {
	return s.AddKeywordFn(ctx, text)
}

func (s *KeywordService) ActiveKeywords(ctx context.Context) ([]string, error) {
	return s.ActiveKeywordsFn(ctx)
}

func (s *KeywordService) SetKeywordActive(ctx context.Context, text string, active bool) error {
	return s.SetKeywordActiveFn(ctx, text, active)
}

var _ serpwatch.StatsService = (*StatsService)(nil)

// StatsService is a mock implementation of serpwatch.StatsService.
type StatsService struct {
	RecordRunFn      func(ctx context.Context, report *serpwatch.RunReport, at time.Time) error
	FindStatisticsFn func(ctx context.Context, date string) ([]*serpwatch.Statistics, error)
}

func (s *StatsService) RecordRun(ctx context.Context, report *serpwatch.RunReport, at time.Time) error {
	return s.RecordRunFn(ctx, report, at)
}

func (s *StatsService) FindStatistics(ctx context.Context, date string) ([]*serpwatch.Statistics, error) {
	return s.FindStatisticsFn(ctx, date)
}
