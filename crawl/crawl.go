// Package crawl orchestrates search result crawling. It paces and retries
// requests, paginates each (keyword, engine) pair and fans pairs out over a
// bounded worker pool while tracking per-engine health.
package crawl

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/serpwatch"
	"golang.org/x/sync/errgroup"
)

// DefaultProbeKeyword is used by probes when ProbeKeyword is empty.
const DefaultProbeKeyword = "python"

// probeSamples is the number of sample results kept on a probe.
const probeSamples = 3

// Crawler runs crawls across keywords and engines. Results, Tasks and Stats
// are optional collaborators; when set, each page's results, each run's
// task lifecycle and each run's statistics are written as the crawl
// progresses.
type Crawler struct {
	Engines  serpwatch.EngineRegistry
	Executor serpwatch.Executor
	Parser   serpwatch.Parser
	Limiter  serpwatch.RateLimiter

	Results serpwatch.ResultWriter
	Tasks   serpwatch.TaskService
	Stats   serpwatch.StatsService

	Concurrency  int
	MaxRetries   int
	ProbeKeyword string

	// Health accumulates across crawls made with this Crawler.
	Health HealthTracker

	// Now defaults to time.Now.
	Now func() time.Time
}

// CrawlRequest names the work of one crawl. An empty Engines list means
// every enabled engine. Disabled engines can still be named explicitly.
type CrawlRequest struct {
	Keywords []string
	Engines  []string
	MaxPages int
}

// CrawlReport is the outcome of RunCrawl. Health always has an entry for
// every requested engine.
type CrawlReport struct {
	Results  []*serpwatch.SearchResult
	Runs     []*serpwatch.RunReport
	Health   map[string]serpwatch.EngineHealth
	Canceled bool
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type    ProgressType
	Keyword string
	Engine  string
	Page    int
	Results int
	Report  *serpwatch.RunReport
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressRunStarted ProgressType = iota
	ProgressPage
	ProgressRunFinished
	ProgressStoreFailed
)

// ProgressFunc is a callback for reporting crawl progress. Calls are
// serialized.
type ProgressFunc func(event ProgressEvent)

type pair struct {
	keyword string
	engine  string
}

// RunCrawl crawls every (keyword, engine) pair of req. Unknown engines are
// reported as ENOTFOUND before any request is made. A pair's failure never
// affects other pairs. Cancelling ctx stops new pairs and pages from
// starting; requests in flight finish and their results are still written.
func (c *Crawler) RunCrawl(ctx context.Context, req CrawlRequest, progress ProgressFunc) (*CrawlReport, error) {
	engines := req.Engines
	if len(engines) == 0 {
		engines = serpwatch.EnabledEngines(c.Engines)
		if len(engines) == 0 {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "no enabled engines")
		}
	}
	for _, name := range engines {
		if _, err := c.Engines.Engine(name); err != nil {
			return nil, err
		}
	}
	if len(req.Keywords) == 0 {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "at least one keyword required")
	}

	var pairs []pair
	for _, kw := range req.Keywords {
		for _, name := range engines {
			pairs = append(pairs, pair{keyword: kw, engine: name})
		}
	}
	for _, name := range engines {
		c.Health.Ensure(name)
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}

	var (
		mu     sync.Mutex
		report = &CrawlReport{}
	)
	notify := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	paginator := &Paginator{
		Engines:    c.Engines,
		Executor:   c.Executor,
		Parser:     c.Parser,
		Limiter:    c.Limiter,
		MaxRetries: c.MaxRetries,
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for _, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			run := c.runPair(ctx, paginator, p, req.MaxPages, func(ev ProgressEvent, results []*serpwatch.SearchResult) {
				mu.Lock()
				defer mu.Unlock()
				report.Results = append(report.Results, results...)
				notify(ev)
			})
			mu.Lock()
			report.Runs = append(report.Runs, run)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(report.Runs, func(a, b *serpwatch.RunReport) int {
		if a.Keyword != b.Keyword {
			return indexOf(req.Keywords, a.Keyword) - indexOf(req.Keywords, b.Keyword)
		}
		return indexOf(engines, a.Engine) - indexOf(engines, b.Engine)
	})
	report.Health = c.Health.Snapshot()
	report.Canceled = ctx.Err() != nil
	return report, nil
}

// runPair paginates one pair, recording its task, results and statistics.
// report is called with progress events and the results they carry, under
// the crawl's lock.
func (c *Crawler) runPair(ctx context.Context, paginator *Paginator, p pair, maxPages int, report func(ProgressEvent, []*serpwatch.SearchResult)) *serpwatch.RunReport {
	// Bookkeeping writes outlive cancellation so finished work is kept.
	wctx := context.WithoutCancel(ctx)

	taskID := c.startTask(wctx, p, report)
	report(ProgressEvent{Type: ProgressRunStarted, Keyword: p.keyword, Engine: p.engine}, nil)

	emit := func(page Page) error {
		for _, r := range page.Results {
			r.TaskID = taskID
		}
		if c.Results != nil {
			if err := c.Results.CreateResults(wctx, page.Results); err != nil {
				return err
			}
		}
		report(ProgressEvent{
			Type:    ProgressPage,
			Keyword: p.keyword,
			Engine:  p.engine,
			Page:    page.Index,
			Results: len(page.Results),
		}, page.Results)
		return nil
	}

	run, err := paginator.Run(ctx, p.keyword, p.engine, maxPages, emit)
	if err != nil {
		run = &serpwatch.RunReport{
			Keyword: p.keyword,
			Engine:  p.engine,
			Status:  serpwatch.StatusStoppedError,
			Err:     serpwatch.ErrorDetail(err),
		}
	}
	c.Health.Record(run)

	c.finishTask(wctx, taskID, run, report)
	if c.Stats != nil {
		if err := c.Stats.RecordRun(wctx, run, c.now()); err != nil {
			report(ProgressEvent{Type: ProgressStoreFailed, Keyword: p.keyword, Engine: p.engine, Error: err}, nil)
		}
	}

	report(ProgressEvent{Type: ProgressRunFinished, Keyword: p.keyword, Engine: p.engine, Report: run}, nil)
	return run
}

func (c *Crawler) startTask(ctx context.Context, p pair, report func(ProgressEvent, []*serpwatch.SearchResult)) string {
	if c.Tasks == nil {
		return ""
	}
	task := &serpwatch.Task{Keyword: p.keyword, Engine: p.engine, Status: serpwatch.TaskPending}
	if err := c.Tasks.CreateTask(ctx, task); err != nil {
		report(ProgressEvent{Type: ProgressStoreFailed, Keyword: p.keyword, Engine: p.engine, Error: err}, nil)
		return ""
	}
	running := serpwatch.TaskRunning
	if _, err := c.Tasks.UpdateTask(ctx, task.ID, serpwatch.TaskUpdate{Status: &running}); err != nil {
		report(ProgressEvent{Type: ProgressStoreFailed, Keyword: p.keyword, Engine: p.engine, Error: err}, nil)
	}
	return task.ID
}

func (c *Crawler) finishTask(ctx context.Context, id string, run *serpwatch.RunReport, report func(ProgressEvent, []*serpwatch.SearchResult)) {
	if c.Tasks == nil || id == "" {
		return
	}
	status := serpwatch.TaskStatus(run.Status)
	upd := serpwatch.TaskUpdate{Status: &status, ResultCount: &run.ResultCount}
	if run.Err != "" {
		upd.ErrorMessage = &run.Err
	}
	if _, err := c.Tasks.UpdateTask(ctx, id, upd); err != nil {
		report(ProgressEvent{Type: ProgressStoreFailed, Keyword: run.Keyword, Engine: run.Engine, Error: err}, nil)
	}
}

// ProbeEngine fetches and parses the first result page of the probe
// keyword on engine. It bypasses pagination and health tracking.
func (c *Crawler) ProbeEngine(ctx context.Context, engine string) *serpwatch.ProbeResult {
	keyword := c.ProbeKeyword
	if keyword == "" {
		keyword = DefaultProbeKeyword
	}
	res := &serpwatch.ProbeResult{Engine: engine, Keyword: keyword}
	defer func(begin time.Time) {
		res.Duration = time.Since(begin)
	}(time.Now())

	cfg, err := c.Engines.Engine(engine)
	if err != nil {
		res.Error = serpwatch.ErrorMessage(err)
		return res
	}

	out := c.Executor.Execute(ctx, cfg.URL(keyword, 0), c.MaxRetries)
	if out.Kind != serpwatch.FetchSuccess {
		res.Blocked = out.Kind == serpwatch.FetchBlocked
		res.Error = out.Kind.String() + ": " + out.Reason
		return res
	}
	res.Reachable = true

	parsed, err := c.Parser.Parse(out.Body, cfg, keyword, 0)
	if err != nil {
		res.Error = serpwatch.ErrorDetail(err)
		return res
	}
	res.Candidate = parsed.Candidate
	res.ResultCount = len(parsed.Results)
	res.Success = res.ResultCount > 0
	res.Samples = parsed.Results[:min(probeSamples, len(parsed.Results))]
	if !res.Success {
		res.Error = "no results parsed"
	}
	return res
}

// ProbeAllEngines probes every enabled engine concurrently and returns the
// results in registry order.
func (c *Crawler) ProbeAllEngines(ctx context.Context) []*serpwatch.ProbeResult {
	names := serpwatch.EnabledEngines(c.Engines)
	results := make([]*serpwatch.ProbeResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.ProbeEngine(ctx, name)
		}()
	}
	wg.Wait()
	return results
}

func (c *Crawler) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func indexOf(list []string, s string) int {
	return slices.Index(list, s)
}
