package mock

import (
	"context"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.ResultWriter = (*ResultWriter)(nil)

// ResultWriter is a mock implementation of serpwatch.ResultWriter.
type ResultWriter struct {
	CreateResultsFn func(ctx context.Context, results []*serpwatch.SearchResult) error
}

func (w *ResultWriter) CreateResults(ctx context.Context, results []*serpwatch.SearchResult) error {
	return w.CreateResultsFn(ctx, results)
}

var _ serpwatch.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of serpwatch.ResultService.
type ResultService struct {
	CreateResultsFn func(ctx context.Context, results []*serpwatch.SearchResult) error
	FindResultsFn   func(ctx context.Context, filter serpwatch.ResultFilter) ([]*serpwatch.SearchResult, error)
	DeleteResultsFn func(ctx context.Context, filter serpwatch.ResultFilter) (int, error)
}

func (s *ResultService) CreateResults(ctx context.Context, results []*serpwatch.SearchResult) error {
	return s.CreateResultsFn(ctx, results)
}

func (s *ResultService) FindResults(ctx context.Context, filter serpwatch.ResultFilter) ([]*serpwatch.SearchResult, error) {
	return s.FindResultsFn(ctx, filter)
}

func (s *ResultService) DeleteResults(ctx context.Context, filter serpwatch.ResultFilter) (int, error) {
	return s.DeleteResultsFn(ctx, filter)
}
