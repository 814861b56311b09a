package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Compile-time interface verification.
var _ serpwatch.StatsService = (*StatsService)(nil)

// dateLayout is the day key of the statistics table.
const dateLayout = "2006-01-02"

// StatsService implements serpwatch.StatsService using SQLite.
type StatsService struct {
	db *DB
}

// NewStatsService creates a new StatsService.
func NewStatsService(db *DB) *StatsService {
	return &StatsService{db: db}
}

// RecordRun folds report into the row for its keyword, engine and the UTC
// day of at. A canceled run counts as a run but not as a failure.
func (s *StatsService) RecordRun(ctx context.Context, report *serpwatch.RunReport, at time.Time) error {
	if report.Keyword == "" || report.Engine == "" {
		return serpwatch.Errorf(serpwatch.EINVALID, "run keyword and engine required")
	}
	failed := 0
	if report.Status.Failed() && !report.Canceled {
		failed = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO statistics (keyword, engine, date, runs, failed_runs, total_results, total_duration_ns)
		VALUES (?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(keyword, engine, date) DO UPDATE SET
			runs = runs + 1,
			failed_runs = failed_runs + excluded.failed_runs,
			total_results = total_results + excluded.total_results,
			total_duration_ns = total_duration_ns + excluded.total_duration_ns
	`, report.Keyword, report.Engine, at.UTC().Format(dateLayout), failed, report.ResultCount, int64(report.Duration))

	return err
}

// FindStatistics returns statistics for date, or for all dates when date
// is empty.
func (s *StatsService) FindStatistics(ctx context.Context, date string) ([]*serpwatch.Statistics, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT keyword, engine, date, runs, failed_runs, total_results, total_duration_ns FROM statistics WHERE 1=1")
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "invalid date %q: want YYYY-MM-DD", date)
		}
		query.WriteString(" AND date = ?")
		args = append(args, date)
	}
	query.WriteString(" ORDER BY date ASC, keyword ASC, engine ASC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*serpwatch.Statistics
	for rows.Next() {
		var st serpwatch.Statistics
		var durationNS int64
		if err := rows.Scan(&st.Keyword, &st.Engine, &st.Date, &st.Runs, &st.FailedRuns,
			&st.TotalResults, &durationNS); err != nil {
			return nil, err
		}
		st.TotalDuration = time.Duration(durationNS)
		stats = append(stats, &st)
	}
	return stats, rows.Err()
}
