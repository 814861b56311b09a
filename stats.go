package serpwatch

import (
	"context"
	"time"
)

// Statistics aggregates runs for one keyword and engine on one day.
type Statistics struct {
	Keyword       string        `json:"keyword"`
	Engine        string        `json:"engine"`
	Date          string        `json:"date"`
	Runs          int           `json:"runs"`
	FailedRuns    int           `json:"failedRuns"`
	TotalResults  int           `json:"totalResults"`
	TotalDuration time.Duration `json:"totalDuration"`
}

// AverageDuration returns the mean run duration.
func (s *Statistics) AverageDuration() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Runs)
}

// StatsService records and queries daily run statistics.
type StatsService interface {
	// RecordRun folds report into the statistics for the day of at.
	RecordRun(ctx context.Context, report *RunReport, at time.Time) error

	// FindStatistics returns statistics for date (YYYY-MM-DD), or all
	// dates when date is empty, ordered by date, keyword and engine.
	FindStatistics(ctx context.Context, date string) ([]*Statistics, error)
}
