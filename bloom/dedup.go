package bloom

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/serpwatch"
)

// Ensure DedupWriter implements serpwatch.ResultWriter.
var _ serpwatch.ResultWriter = (*DedupWriter)(nil)

// DedupWriter drops results whose engine, keyword and URL were already
// passed to the wrapped writer. Results without a URL are never dropped.
// A false positive can drop a result that was not seen before.
type DedupWriter struct {
	next    serpwatch.ResultWriter
	filter  *Filter
	dropped atomic.Int64
}

// NewDedupWriter wraps next with a filter sized for n expected results.
func NewDedupWriter(next serpwatch.ResultWriter, n uint) *DedupWriter {
	return &DedupWriter{next: next, filter: NewFilter(n, 0.001)}
}

// CreateResults forwards the results not seen before. The keys of a batch
// are only remembered once the wrapped writer accepts it.
func (w *DedupWriter) CreateResults(ctx context.Context, results []*serpwatch.SearchResult) error {
	fresh := make([]*serpwatch.SearchResult, 0, len(results))
	var keys []string
	batch := make(map[string]bool)
	for _, r := range results {
		if r.URL == "" {
			fresh = append(fresh, r)
			continue
		}
		key := dedupKey(r)
		if batch[key] || w.filter.Test(key) {
			w.dropped.Add(1)
			continue
		}
		batch[key] = true
		keys = append(keys, key)
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := w.next.CreateResults(ctx, fresh); err != nil {
		return err
	}
	for _, key := range keys {
		w.filter.Add(key)
	}
	return nil
}

// Seed remembers already stored results so later batches repeating them
// are dropped. It returns how many keys were new to the filter.
func (w *DedupWriter) Seed(results []*serpwatch.SearchResult) int {
	var n int
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if !w.filter.TestAndAdd(dedupKey(r)) {
			n++
		}
	}
	return n
}

// Remembered returns the approximate number of keys in the filter.
func (w *DedupWriter) Remembered() uint {
	return w.filter.EstimatedCount()
}

// Dropped returns how many results were suppressed.
func (w *DedupWriter) Dropped() int {
	return int(w.dropped.Load())
}

func dedupKey(r *serpwatch.SearchResult) string {
	return r.Engine + "|" + r.Keyword + "|" + r.URL
}
