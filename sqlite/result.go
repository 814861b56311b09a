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
var _ serpwatch.ResultService = (*ResultService)(nil)

// ResultService implements serpwatch.ResultService using SQLite.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// CreateResults stores a batch of results in one transaction. Either every
// result is stored or none is. A batch holding two results for the same
// position is rejected with ECONFLICT.
func (s *ResultService) CreateResults(ctx context.Context, results []*serpwatch.SearchResult) error {
	if len(results) == 0 {
		return nil
	}
	positions := make(map[string]bool, len(results))
	for _, r := range results {
		if err := r.Validate(); err != nil {
			return err
		}
		key := r.Key()
		if positions[key] {
			return serpwatch.Errorf(serpwatch.ECONFLICT, "duplicate result position %s", key)
		}
		positions[key] = true
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (id, task_id, keyword, engine, page, rank, title, url, url_hash, snippet, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = uuid.New().String()
		fetchedAt := r.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = now
		}
		if _, err := stmt.ExecContext(ctx, ids[i], nullString(r.TaskID), r.Keyword, r.Engine, r.Page, r.Rank,
			r.Title, r.URL, hashURL(r.URL), r.Snippet, formatTime(fetchedAt)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for i, r := range results {
		r.ID = ids[i]
		if r.FetchedAt.IsZero() {
			r.FetchedAt = now
		}
	}
	return nil
}

// FindResults retrieves results matching the filter.
func (s *ResultService) FindResults(ctx context.Context, filter serpwatch.ResultFilter) ([]*serpwatch.SearchResult, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, task_id, keyword, engine, page, rank, title, url, snippet, fetched_at FROM results")
	appendResultFilter(&query, &args, filter)
	query.WriteString(" ORDER BY keyword ASC, engine ASC, page ASC, rank ASC, fetched_at ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*serpwatch.SearchResult
	for rows.Next() {
		var r serpwatch.SearchResult
		var taskID sql.NullString
		var fetchedAt string

		if err := rows.Scan(&r.ID, &taskID, &r.Keyword, &r.Engine, &r.Page, &r.Rank,
			&r.Title, &r.URL, &r.Snippet, &fetchedAt); err != nil {
			return nil, err
		}
		r.TaskID = taskID.String
		if r.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, err
		}
		results = append(results, &r)
	}

	return results, rows.Err()
}

// DeleteResults removes results matching the filter.
func (s *ResultService) DeleteResults(ctx context.Context, filter serpwatch.ResultFilter) (int, error) {
	var query strings.Builder
	var args []any

	query.WriteString("DELETE FROM results")
	appendResultFilter(&query, &args, filter)

	result, err := s.db.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func appendResultFilter(query *strings.Builder, args *[]any, filter serpwatch.ResultFilter) {
	query.WriteString(" WHERE 1=1")
	if filter.Keyword != nil {
		query.WriteString(" AND keyword = ?")
		*args = append(*args, *filter.Keyword)
	}
	if filter.Engine != nil {
		query.WriteString(" AND engine = ?")
		*args = append(*args, *filter.Engine)
	}
	if filter.TaskID != nil {
		query.WriteString(" AND task_id = ?")
		*args = append(*args, *filter.TaskID)
	}
	if filter.URL != nil {
		// The hash narrows the scan through its index; the url comparison
		// rules out collisions.
		query.WriteString(" AND url_hash = ? AND url = ?")
		*args = append(*args, hashURL(*filter.URL), *filter.URL)
	}
}
