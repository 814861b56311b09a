package serpwatch

import "time"

// RunStatus is the terminal status of one (keyword, engine) run.
type RunStatus string

// RunStatus constants.
const (
	StatusCompleted      RunStatus = "completed"
	StatusStoppedEmpty   RunStatus = "stopped_empty"
	StatusStoppedBlocked RunStatus = "stopped_blocked"
	StatusStoppedError   RunStatus = "stopped_error"
)

// Failed reports whether the run ended on a block or an error.
func (s RunStatus) Failed() bool {
	return s == StatusStoppedBlocked || s == StatusStoppedError
}

// RunReport summarizes one (keyword, engine) run. Pages counts pages whose
// fetch was attempted. Canceled marks a run cut short by the caller; its
// status is StatusStoppedError but it says nothing about the engine.
type RunReport struct {
	Keyword     string        `json:"keyword"`
	Engine      string        `json:"engine"`
	Status      RunStatus     `json:"status"`
	Pages       int           `json:"pages"`
	ResultCount int           `json:"resultCount"`
	Err         string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	Canceled    bool          `json:"canceled,omitempty"`
}

// EngineHealth accumulates per-engine outcomes across runs.
type EngineHealth struct {
	Engine    string `json:"engine"`
	Attempts  int    `json:"attempts"`
	Successes int    `json:"successes"`
	Blocks    int    `json:"blocks"`
	Failures  int    `json:"failures"`
	Pages     int    `json:"pages"`
	Results   int    `json:"results"`
	LastError string `json:"lastError,omitempty"`
}

// SuccessRate returns successes per attempt, or 0 with no attempts.
func (h EngineHealth) SuccessRate() float64 {
	if h.Attempts == 0 {
		return 0
	}
	return float64(h.Successes) / float64(h.Attempts)
}

// ProbeResult reports a single-page diagnostic request against an engine.
// Reachable is true when a response was obtained and was not a block page;
// Success additionally requires at least one parsed result. Blocked is set
// when the engine answered with a block page or rate limit.
type ProbeResult struct {
	Engine      string          `json:"engine"`
	Keyword     string          `json:"keyword"`
	Reachable   bool            `json:"reachable"`
	Success     bool            `json:"success"`
	Blocked     bool            `json:"blocked,omitempty"`
	ResultCount int             `json:"resultCount"`
	Candidate   string          `json:"candidate,omitempty"`
	Error       string          `json:"error,omitempty"`
	Samples     []*SearchResult `json:"samples,omitempty"`
	Duration    time.Duration   `json:"duration"`
}
