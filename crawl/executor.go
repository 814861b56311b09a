package crawl

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Executor defaults.
const (
	DefaultDelayMin     = 1 * time.Second
	DefaultDelayMax     = 3 * time.Second
	DefaultBackoffBase  = 1 * time.Second
	DefaultBackoffMax   = 30 * time.Second
	DefaultBlockDelay   = 10 * time.Second
	DefaultBlockRetries = 1
	DefaultMaxRetries   = 3
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

var _ serpwatch.Executor = (*Executor)(nil)

// Executor turns single fetch attempts into classified outcomes. Every
// attempt is preceded by a randomized delay. Network failures and 5xx
// responses are retried with exponential backoff up to the caller's retry
// budget; block pages are retried BlockRetries times after BlockDelay.
type Executor struct {
	Fetcher  serpwatch.Fetcher
	Detector *serpwatch.BlockDetector

	DelayMin     time.Duration
	DelayMax     time.Duration
	BackoffBase  time.Duration
	BackoffMax   time.Duration
	BlockDelay   time.Duration
	BlockRetries int

	// Sleep defaults to a context-aware timer.
	Sleep SleepFunc
	// Jitter returns a value in [0, 1). Defaults to math/rand.
	Jitter func() float64
}

// NewExecutor returns an Executor with default delays and block detection.
func NewExecutor(fetcher serpwatch.Fetcher) *Executor {
	return &Executor{
		Fetcher:      fetcher,
		Detector:     serpwatch.NewBlockDetector(),
		DelayMin:     DefaultDelayMin,
		DelayMax:     DefaultDelayMax,
		BackoffBase:  DefaultBackoffBase,
		BackoffMax:   DefaultBackoffMax,
		BlockDelay:   DefaultBlockDelay,
		BlockRetries: DefaultBlockRetries,
	}
}

// Execute fetches url and classifies the outcome. Cancellation of ctx is
// only observed while waiting; an attempt already sent runs to completion
// or to its timeout.
func (e *Executor) Execute(ctx context.Context, url string, maxRetries int) serpwatch.FetchOutcome {
	maxRetries = max(maxRetries, 0)
	detector := e.Detector
	if detector == nil {
		detector = serpwatch.NewBlockDetector()
	}

	var (
		attempts   int
		retries    int
		blocks     int
		extraDelay time.Duration
	)
	for {
		if err := e.sleep(ctx, e.delay()+extraDelay); err != nil {
			return withAttempts(serpwatch.TransientError(err), attempts)
		}
		attempts++

		resp, err := e.Fetcher.Fetch(context.WithoutCancel(ctx), url)
		if err != nil {
			if serpwatch.ErrorCode(err) == serpwatch.EINVALID {
				return withAttempts(serpwatch.FatalError(err), attempts)
			}
			if retries >= maxRetries {
				return withAttempts(serpwatch.FatalError(serpwatch.Errorf(serpwatch.ENETWORK,
					"giving up on %s after %d attempts: %s", url, attempts, serpwatch.ErrorDetail(err))), attempts)
			}
			extraDelay = e.backoff(retries)
			retries++
			continue
		}

		if verdict, reason := detector.Classify(resp); verdict == serpwatch.VerdictBlocked {
			if blocks >= e.BlockRetries {
				return withAttempts(serpwatch.Blocked(reason, resp.StatusCode), attempts)
			}
			extraDelay = e.BlockDelay
			blocks++
			continue
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			if retries >= maxRetries {
				return withAttempts(serpwatch.FatalError(serpwatch.Errorf(serpwatch.ENETWORK,
					"HTTP %d from %s after %d attempts", resp.StatusCode, url, attempts)), attempts)
			}
			extraDelay = e.backoff(retries)
			retries++
			continue
		case resp.StatusCode >= http.StatusBadRequest:
			out := serpwatch.FatalError(serpwatch.Errorf(serpwatch.EINVALID, "HTTP %d from %s", resp.StatusCode, url))
			out.StatusCode = resp.StatusCode
			return withAttempts(out, attempts)
		}

		return withAttempts(serpwatch.Success(resp.Body, resp.StatusCode), attempts)
	}
}

// delay returns a uniformly random pre-request delay in [DelayMin, DelayMax].
func (e *Executor) delay() time.Duration {
	lo, hi := e.DelayMin, e.DelayMax
	if hi < lo {
		hi = lo
	}
	if hi == lo {
		return lo
	}
	return lo + time.Duration(e.jitter()*float64(hi-lo))
}

// backoff returns BackoffBase * 2^n capped at BackoffMax.
func (e *Executor) backoff(n int) time.Duration {
	d := e.BackoffBase
	for range n {
		d *= 2
		if e.BackoffMax > 0 && d >= e.BackoffMax {
			return e.BackoffMax
		}
	}
	if e.BackoffMax > 0 && d > e.BackoffMax {
		return e.BackoffMax
	}
	return d
}

func (e *Executor) jitter() float64 {
	if e.Jitter != nil {
		return e.Jitter()
	}
	return rand.Float64()
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func withAttempts(out serpwatch.FetchOutcome, attempts int) serpwatch.FetchOutcome {
	out.Attempts = attempts
	return out
}
