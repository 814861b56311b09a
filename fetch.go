package serpwatch

import (
	"context"
	"fmt"
)

// Response is the raw result of one HTTP attempt.
type Response struct {
	URL        string
	StatusCode int
	Body       string
}

// Fetcher performs a single HTTP GET attempt.
// Transport failures are returned as errors; any HTTP status, including
// errors and anti-bot pages, is returned as a Response.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// UserAgentProvider supplies the User-Agent header for each attempt.
type UserAgentProvider interface {
	UserAgent() string
}

// FetchKind classifies a request outcome.
type FetchKind int

const (
	FetchSuccess FetchKind = iota
	FetchBlocked
	FetchTransient
	FetchFatal
)

// String implements fmt.Stringer.
func (k FetchKind) String() string {
	switch k {
	case FetchSuccess:
		return "success"
	case FetchBlocked:
		return "blocked"
	case FetchTransient:
		return "transient"
	case FetchFatal:
		return "fatal"
	default:
		return fmt.Sprintf("FetchKind(%d)", int(k))
	}
}

// FetchOutcome is the classified result of fetching one page, after
// delays and retries.
type FetchOutcome struct {
	Kind       FetchKind
	Body       string
	StatusCode int
	Reason     string
	Err        error
	Attempts   int
}

// Success returns a successful outcome carrying the page body.
func Success(body string, status int) FetchOutcome {
	return FetchOutcome{Kind: FetchSuccess, Body: body, StatusCode: status}
}

// Blocked returns an outcome for a page that was judged to be an
// anti-bot response.
func Blocked(reason string, status int) FetchOutcome {
	return FetchOutcome{
		Kind:       FetchBlocked,
		StatusCode: status,
		Reason:     reason,
		Err:        Errorf(EBLOCKED, "blocked: %s", reason),
	}
}

// TransientError returns an outcome for an attempt interrupted before it
// could be resolved, typically by cancellation.
func TransientError(err error) FetchOutcome {
	return FetchOutcome{Kind: FetchTransient, Reason: ErrorDetail(err), Err: err}
}

// FatalError returns an outcome for a request that failed permanently.
func FatalError(err error) FetchOutcome {
	return FetchOutcome{Kind: FetchFatal, Reason: ErrorDetail(err), Err: err}
}

// Executor fetches a page with pacing, retries and block classification.
type Executor interface {
	Execute(ctx context.Context, url string, maxRetries int) FetchOutcome
}

// RateLimiter paces requests per engine.
type RateLimiter interface {
	// Wait blocks until a request to engine is allowed.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context, engine string) error
}
