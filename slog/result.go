package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure LoggingResultWriter implements serpwatch.ResultWriter.
var _ serpwatch.ResultWriter = (*LoggingResultWriter)(nil)

// LoggingResultWriter wraps a ResultWriter and logs each stored batch.
type LoggingResultWriter struct {
	next   serpwatch.ResultWriter
	logger *slog.Logger
}

// NewLoggingResultWriter creates a new LoggingResultWriter.
func NewLoggingResultWriter(next serpwatch.ResultWriter, logger *slog.Logger) *LoggingResultWriter {
	return &LoggingResultWriter{next: next, logger: logger}
}

// CreateResults delegates to the wrapped writer and logs the batch.
func (w *LoggingResultWriter) CreateResults(ctx context.Context, results []*serpwatch.SearchResult) (err error) {
	defer func(begin time.Time) {
		var keyword, engine string
		if len(results) > 0 {
			keyword, engine = results[0].Keyword, results[0].Engine
		}
		w.logger.Info("store results",
			"keyword", keyword,
			"engine", engine,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.CreateResults(ctx, results)
}
