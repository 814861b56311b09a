package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/serpwatch"
)

// Page is one parsed result page handed to a PageFunc.
type Page struct {
	Keyword   string
	Engine    string
	Index     int
	Candidate string
	Results   []*serpwatch.SearchResult
}

// PageFunc receives each non-empty page as soon as it is parsed. A returned
// error stops the run with StatusStoppedError.
type PageFunc func(page Page) error

// Paginator walks an engine's result pages for one keyword in strict page
// order, stopping at the first empty page, block or failure.
type Paginator struct {
	Engines  serpwatch.EngineRegistry
	Executor serpwatch.Executor
	Parser   serpwatch.Parser
	// Limiter is optional.
	Limiter    serpwatch.RateLimiter
	MaxRetries int
}

// Run paginates keyword on engine for at most maxPages pages. The only
// error returned is ENOTFOUND for an unknown engine; every other outcome is
// a terminal status on the report.
func (p *Paginator) Run(ctx context.Context, keyword, engine string, maxPages int, emit PageFunc) (*serpwatch.RunReport, error) {
	cfg, err := p.Engines.Engine(engine)
	if err != nil {
		return nil, err
	}

	report := &serpwatch.RunReport{
		Keyword: keyword,
		Engine:  engine,
		Status:  serpwatch.StatusCompleted,
	}
	defer func(begin time.Time) {
		report.Duration = time.Since(begin)
	}(time.Now())

	stop := func(status serpwatch.RunStatus, detail string) (*serpwatch.RunReport, error) {
		report.Status = status
		report.Err = detail
		return report, nil
	}
	canceled := func(page int, err error) (*serpwatch.RunReport, error) {
		report.Canceled = true
		return stop(serpwatch.StatusStoppedError, fmt.Sprintf("page %d: %v", page, err))
	}

	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return canceled(page, err)
		}
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx, engine); err != nil {
				if ctx.Err() != nil {
					return canceled(page, ctx.Err())
				}
				return stop(serpwatch.StatusStoppedError, fmt.Sprintf("page %d: %v", page, err))
			}
		}

		report.Pages++
		out := p.Executor.Execute(ctx, cfg.URL(keyword, page), p.MaxRetries)
		switch out.Kind {
		case serpwatch.FetchBlocked:
			return stop(serpwatch.StatusStoppedBlocked, fmt.Sprintf("page %d: %s", page, out.Reason))
		case serpwatch.FetchTransient:
			if ctx.Err() != nil {
				return canceled(page, ctx.Err())
			}
			return stop(serpwatch.StatusStoppedError, fmt.Sprintf("page %d: %s", page, out.Reason))
		case serpwatch.FetchFatal:
			return stop(serpwatch.StatusStoppedError, fmt.Sprintf("page %d: %s", page, out.Reason))
		}

		parsed, err := p.Parser.Parse(out.Body, cfg, keyword, page)
		if err != nil {
			return stop(serpwatch.StatusStoppedError, fmt.Sprintf("page %d: parse: %s", page, serpwatch.ErrorDetail(err)))
		}
		if len(parsed.Results) == 0 {
			return stop(serpwatch.StatusStoppedEmpty, "")
		}

		report.ResultCount += len(parsed.Results)
		if emit != nil {
			err := emit(Page{
				Keyword:   keyword,
				Engine:    engine,
				Index:     page,
				Candidate: parsed.Candidate,
				Results:   parsed.Results,
			})
			if err != nil {
				return stop(serpwatch.StatusStoppedError, fmt.Sprintf("page %d: %s", page, serpwatch.ErrorDetail(err)))
			}
		}
	}

	return report, nil
}
