package crawl

import (
	"sync"

	"github.com/fwojciec/serpwatch"
)

// HealthTracker accumulates EngineHealth from run reports. The zero value
// is ready to use and safe for concurrent use.
type HealthTracker struct {
	mu      sync.Mutex
	engines map[string]*serpwatch.EngineHealth
}

// Ensure registers engine with zero counters if it has no entry yet.
func (h *HealthTracker) Ensure(engine string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entry(engine)
}

// Record folds one run's terminal state into its engine's counters.
// Canceled runs are ignored.
func (h *HealthTracker) Record(r *serpwatch.RunReport) {
	if r.Canceled {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	e := h.entry(r.Engine)
	e.Attempts++
	e.Pages += r.Pages
	e.Results += r.ResultCount
	switch r.Status {
	case serpwatch.StatusCompleted, serpwatch.StatusStoppedEmpty:
		e.Successes++
	case serpwatch.StatusStoppedBlocked:
		e.Blocks++
	case serpwatch.StatusStoppedError:
		e.Failures++
	}
	if r.Err != "" {
		e.LastError = r.Err
	}
}

// RecordProbe folds a single-page diagnostic into its engine's counters as
// a one-page attempt.
func (h *HealthTracker) RecordProbe(p *serpwatch.ProbeResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := h.entry(p.Engine)
	e.Attempts++
	e.Pages++
	e.Results += p.ResultCount
	switch {
	case p.Success:
		e.Successes++
	case p.Blocked:
		e.Blocks++
	default:
		e.Failures++
	}
	if p.Error != "" {
		e.LastError = p.Error
	}
}

// Seed adds stored daily statistics to the counters, so a fresh tracker
// starts from what earlier processes recorded. Stored failures do not
// distinguish blocks from errors and are counted as failures.
func (h *HealthTracker) Seed(stats []*serpwatch.Statistics) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, st := range stats {
		e := h.entry(st.Engine)
		e.Attempts += st.Runs
		e.Successes += st.Runs - st.FailedRuns
		e.Failures += st.FailedRuns
		e.Results += st.TotalResults
	}
}

// Snapshot returns a copy of all counters keyed by engine.
func (h *HealthTracker) Snapshot() map[string]serpwatch.EngineHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]serpwatch.EngineHealth, len(h.engines))
	for name, e := range h.engines {
		out[name] = *e
	}
	return out
}

func (h *HealthTracker) entry(engine string) *serpwatch.EngineHealth {
	if h.engines == nil {
		h.engines = make(map[string]*serpwatch.EngineHealth)
	}
	e, ok := h.engines[engine]
	if !ok {
		e = &serpwatch.EngineHealth{Engine: engine}
		h.engines[engine] = e
	}
	return e
}
