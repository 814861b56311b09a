package serpwatch

import (
	"context"
	"fmt"
	"time"
)

// SearchResult is one parsed result item. Rank is the 0-based position
// among items accepted from the same page.
type SearchResult struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId,omitempty"`
	Keyword   string    `json:"keyword"`
	Engine    string    `json:"engine"`
	Page      int       `json:"page"`
	Rank      int       `json:"rank"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Validate returns an error if the result contains invalid fields.
func (r *SearchResult) Validate() error {
	if r.Keyword == "" {
		return Errorf(EINVALID, "result keyword required")
	}
	if r.Engine == "" {
		return Errorf(EINVALID, "result engine required")
	}
	if r.Title == "" {
		return Errorf(EINVALID, "result title required")
	}
	if r.Page < 0 || r.Rank < 0 {
		return Errorf(EINVALID, "result page and rank must not be negative")
	}
	return nil
}

// Key identifies a result position: engine, keyword, page and rank. No two
// results of one stored batch share a key.
func (r *SearchResult) Key() string {
	return fmt.Sprintf("%s|%s|%d|%d", r.Engine, r.Keyword, r.Page, r.Rank)
}

// ResultWriter persists batches of results.
type ResultWriter interface {
	// CreateResults stores results, assigning IDs.
	CreateResults(ctx context.Context, results []*SearchResult) error
}

// ResultService represents a service for managing stored results.
type ResultService interface {
	ResultWriter

	// FindResults retrieves results matching the filter, ordered by
	// keyword, engine, page and rank.
	FindResults(ctx context.Context, filter ResultFilter) ([]*SearchResult, error)

	// DeleteResults removes results matching the filter and reports how
	// many were removed.
	DeleteResults(ctx context.Context, filter ResultFilter) (int, error)
}

// ResultFilter represents a filter for FindResults.
type ResultFilter struct {
	Keyword *string `json:"keyword"`
	Engine  *string `json:"engine"`
	TaskID  *string `json:"taskId"`
	URL     *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
