package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Ensure LoggingFetcher implements serpwatch.Fetcher.
var _ serpwatch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs every attempt.
type LoggingFetcher struct {
	next   serpwatch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next serpwatch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the attempt.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *serpwatch.Response, err error) {
	defer func(begin time.Time) {
		status, size := 0, 0
		if resp != nil {
			status, size = resp.StatusCode, len(resp.Body)
		}
		f.logger.Debug("fetch",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Ensure LoggingExecutor implements serpwatch.Executor.
var _ serpwatch.Executor = (*LoggingExecutor)(nil)

// LoggingExecutor wraps an Executor and logs each classified outcome.
// Successes log at info, everything else at warn.
type LoggingExecutor struct {
	next   serpwatch.Executor
	logger *slog.Logger
}

// NewLoggingExecutor creates a new LoggingExecutor.
func NewLoggingExecutor(next serpwatch.Executor, logger *slog.Logger) *LoggingExecutor {
	return &LoggingExecutor{next: next, logger: logger}
}

// Execute delegates to the wrapped executor and logs the outcome.
func (e *LoggingExecutor) Execute(ctx context.Context, url string, maxRetries int) (out serpwatch.FetchOutcome) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if out.Kind != serpwatch.FetchSuccess {
			level = slog.LevelWarn
		}
		attrs := []any{
			"url", url,
			"outcome", out.Kind.String(),
			"status", out.StatusCode,
			"attempts", out.Attempts,
			"duration", time.Since(begin),
		}
		if out.Reason != "" {
			attrs = append(attrs, "reason", out.Reason)
		}
		e.logger.Log(ctx, level, "request", attrs...)
	}(time.Now())
	return e.next.Execute(ctx, url, maxRetries)
}
