package mock

import (
	"context"

	"github.com/fwojciec/serpwatch"
)

var _ serpwatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of serpwatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*serpwatch.Response, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*serpwatch.Response, error) {
	return f.FetchFn(ctx, url)
}

var _ serpwatch.Executor = (*Executor)(nil)

// Executor is a mock implementation of serpwatch.Executor.
type Executor struct {
	ExecuteFn func(ctx context.Context, url string, maxRetries int) serpwatch.FetchOutcome
}

func (e *Executor) Execute(ctx context.Context, url string, maxRetries int) serpwatch.FetchOutcome {
	return e.ExecuteFn(ctx, url, maxRetries)
}

var _ serpwatch.UserAgentProvider = (*UserAgentProvider)(nil)

// UserAgentProvider is a mock implementation of serpwatch.UserAgentProvider.
type UserAgentProvider struct {
	UserAgentFn func() string
}

func (p *UserAgentProvider) UserAgent() string {
	return p.UserAgentFn()
}
