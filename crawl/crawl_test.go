package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/crawl"
	"github.com/fwojciec/serpwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineExecutor routes each request to a per-engine executor by host.
func engineExecutor(byEngine map[string]serpwatch.Executor) *mock.Executor {
	return &mock.Executor{
		ExecuteFn: func(ctx context.Context, url string, maxRetries int) serpwatch.FetchOutcome {
			for name, e := range byEngine {
				if strings.Contains(url, "://"+name+".") {
					return e.Execute(ctx, url, maxRetries)
				}
			}
			return serpwatch.FatalError(errors.New("no executor for " + url))
		},
	}
}

func TestCrawler_RunCrawl(t *testing.T) {
	t.Parallel()

	t.Run("crawls every keyword and engine pair", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(2) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser(), Concurrency: 2}

		report, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"go", "rust"},
			MaxPages: 2,
		}, nil)

		require.NoError(t, err)
		require.Len(t, report.Runs, 4)
		assert.Len(t, report.Results, 16)
		assert.Len(t, exec.URLs(), 8)
		assert.False(t, report.Canceled)

		assert.Equal(t, "go", report.Runs[0].Keyword)
		assert.Equal(t, "alpha", report.Runs[0].Engine)
		assert.Equal(t, "rust", report.Runs[3].Keyword)
		assert.Equal(t, "beta", report.Runs[3].Engine)
		for _, run := range report.Runs {
			assert.Equal(t, serpwatch.StatusCompleted, run.Status)
		}
	})

	t.Run("unknown engine fails before any request", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(2) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser()}

		_, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"go"},
			Engines:  []string{"alpha", "gamma"},
			MaxPages: 1,
		}, nil)

		require.Error(t, err)
		assert.Equal(t, serpwatch.ENOTFOUND, serpwatch.ErrorCode(err))
		assert.Empty(t, exec.URLs())
	})

	t.Run("default engine list skips disabled engines", func(t *testing.T) {
		t.Parallel()

		alpha := &serpwatch.EngineConfig{
			Name:        "alpha",
			URLTemplate: "https://alpha.test/s?q={keyword}&p={page}",
			PageStep:    serpwatch.PageStep{Stride: 1},
			Selectors:   []serpwatch.SelectorSet{{Name: "a", Result: ".r", Title: "a"}},
		}
		beta := &serpwatch.EngineConfig{
			Name:        "beta",
			URLTemplate: "https://beta.test/s?q={keyword}&p={page}",
			PageStep:    serpwatch.PageStep{Stride: 1},
			Selectors:   []serpwatch.SelectorSet{{Name: "b", Result: ".r", Title: "a"}},
			Disabled:    true,
		}
		reg, err := serpwatch.NewRegistry(alpha, beta)
		require.NoError(t, err)
		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(1) }}
		c := &crawl.Crawler{Engines: reg, Executor: exec, Parser: pageParser()}

		report, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{Keywords: []string{"go"}, MaxPages: 1}, nil)
		require.NoError(t, err)
		require.Len(t, report.Runs, 1)
		assert.Equal(t, "alpha", report.Runs[0].Engine)
		assert.NotContains(t, report.Health, "beta")

		report, err = c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"go"}, Engines: []string{"beta"}, MaxPages: 1,
		}, nil)
		require.NoError(t, err)
		require.Len(t, report.Runs, 1)
		assert.Equal(t, "beta", report.Runs[0].Engine)

		probes := c.ProbeAllEngines(context.Background())
		require.Len(t, probes, 1)
		assert.Equal(t, "alpha", probes[0].Engine)
	})

	t.Run("every engine disabled needs an explicit engine", func(t *testing.T) {
		t.Parallel()

		off := &serpwatch.EngineConfig{
			Name:        "off",
			URLTemplate: "https://off.test/s?q={keyword}&p={page}",
			PageStep:    serpwatch.PageStep{Stride: 1},
			Selectors:   []serpwatch.SelectorSet{{Name: "a", Result: ".r", Title: "a"}},
			Disabled:    true,
		}
		reg, err := serpwatch.NewRegistry(off)
		require.NoError(t, err)
		c := &crawl.Crawler{Engines: reg}

		_, err = c.RunCrawl(context.Background(), crawl.CrawlRequest{Keywords: []string{"go"}, MaxPages: 1}, nil)

		require.Error(t, err)
		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})

	t.Run("requires keywords", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{Engines: testRegistry(t)}

		_, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{MaxPages: 1}, nil)

		require.Error(t, err)
		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})

	t.Run("health counts per engine are the sum of their pair outcomes", func(t *testing.T) {
		t.Parallel()

		alpha := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(3) }}
		beta := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome {
			return serpwatch.Blocked("captcha", 200)
		}}
		c := &crawl.Crawler{
			Engines:     testRegistry(t),
			Executor:    engineExecutor(map[string]serpwatch.Executor{"alpha": alpha, "beta": beta}),
			Parser:      pageParser(),
			Concurrency: 4,
		}

		report, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"a", "b", "c"},
			MaxPages: 2,
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, serpwatch.EngineHealth{
			Engine: "alpha", Attempts: 3, Successes: 3, Pages: 6, Results: 18,
		}, report.Health["alpha"])
		assert.Equal(t, serpwatch.EngineHealth{
			Engine: "beta", Attempts: 3, Blocks: 3, Pages: 3, LastError: "page 0: captcha",
		}, report.Health["beta"])
		assert.Len(t, report.Results, 18)
	})

	t.Run("one pair's failure does not affect others", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(_ int, url string) serpwatch.FetchOutcome {
			if strings.Contains(url, "q=bad") {
				return serpwatch.FatalError(serpwatch.Errorf(serpwatch.ENETWORK, "reset"))
			}
			return items(1)
		}}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser()}

		report, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"bad", "good"},
			Engines:  []string{"alpha"},
			MaxPages: 3,
		}, nil)

		require.NoError(t, err)
		require.Len(t, report.Runs, 2)
		assert.Equal(t, serpwatch.StatusStoppedError, report.Runs[0].Status)
		assert.Equal(t, serpwatch.StatusCompleted, report.Runs[1].Status)
		assert.Equal(t, 3, report.Runs[1].ResultCount)
		assert.Equal(t, 1, report.Health["alpha"].Failures)
		assert.Equal(t, 1, report.Health["alpha"].Successes)
	})

	t.Run("writes results and task lifecycle", func(t *testing.T) {
		t.Parallel()

		var (
			mu       sync.Mutex
			stored   []*serpwatch.SearchResult
			statuses []serpwatch.TaskStatus
			recorded []*serpwatch.RunReport
		)
		results := &mock.ResultWriter{CreateResultsFn: func(_ context.Context, rs []*serpwatch.SearchResult) error {
			mu.Lock()
			defer mu.Unlock()
			stored = append(stored, rs...)
			return nil
		}}
		tasks := &mock.TaskService{
			CreateTaskFn: func(_ context.Context, task *serpwatch.Task) error {
				task.ID = "task-1"
				return nil
			},
			UpdateTaskFn: func(_ context.Context, id string, upd serpwatch.TaskUpdate) (*serpwatch.Task, error) {
				mu.Lock()
				defer mu.Unlock()
				statuses = append(statuses, *upd.Status)
				return &serpwatch.Task{ID: id}, nil
			},
		}
		stats := &mock.StatsService{RecordRunFn: func(_ context.Context, r *serpwatch.RunReport, _ time.Time) error {
			mu.Lock()
			defer mu.Unlock()
			recorded = append(recorded, r)
			return nil
		}}
		exec := &countingExecutor{outcomeFn: func(call int, _ string) serpwatch.FetchOutcome {
			if call == 1 {
				return items(0)
			}
			return items(2)
		}}
		c := &crawl.Crawler{
			Engines: testRegistry(t), Executor: exec, Parser: pageParser(),
			Results: results, Tasks: tasks, Stats: stats,
		}

		_, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"go"},
			Engines:  []string{"alpha"},
			MaxPages: 5,
		}, nil)

		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "task-1", stored[0].TaskID)
		assert.Equal(t, []serpwatch.TaskStatus{serpwatch.TaskRunning, serpwatch.TaskStoppedEmpty}, statuses)
		require.Len(t, recorded, 1)
		assert.Equal(t, serpwatch.StatusStoppedEmpty, recorded[0].Status)
	})

	t.Run("store failure stops only that run", func(t *testing.T) {
		t.Parallel()

		results := &mock.ResultWriter{CreateResultsFn: func(context.Context, []*serpwatch.SearchResult) error {
			return errors.New("database is locked")
		}}
		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(2) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser(), Results: results}

		report, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"go"},
			Engines:  []string{"alpha"},
			MaxPages: 3,
		}, nil)

		require.NoError(t, err)
		require.Len(t, report.Runs, 1)
		assert.Equal(t, serpwatch.StatusStoppedError, report.Runs[0].Status)
		assert.Contains(t, report.Runs[0].Err, "database is locked")
		assert.Empty(t, report.Results)
	})

	t.Run("cancellation stops new pairs and reports canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var calls atomic.Int32
		exec := &mock.Executor{ExecuteFn: func(context.Context, string, int) serpwatch.FetchOutcome {
			calls.Add(1)
			cancel()
			return items(1)
		}}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser(), Concurrency: 1}

		report, err := c.RunCrawl(ctx, crawl.CrawlRequest{
			Keywords: []string{"a", "b", "c"},
			Engines:  []string{"alpha"},
			MaxPages: 5,
		}, nil)

		require.NoError(t, err)
		assert.True(t, report.Canceled)
		assert.Equal(t, int32(1), calls.Load())
		assert.Len(t, report.Results, 1)
		require.Len(t, report.Runs, 1)
		assert.True(t, report.Runs[0].Canceled)
		assert.Equal(t, serpwatch.StatusStoppedError, report.Runs[0].Status)
		assert.Equal(t, serpwatch.EngineHealth{Engine: "alpha"}, report.Health["alpha"])
	})

	t.Run("progress events are delivered for each page and run", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(1) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser(), Concurrency: 4}

		var counts [4]int
		_, err := c.RunCrawl(context.Background(), crawl.CrawlRequest{
			Keywords: []string{"a", "b"},
			MaxPages: 2,
		}, func(ev crawl.ProgressEvent) {
			counts[ev.Type]++
		})

		require.NoError(t, err)
		assert.Equal(t, 4, counts[crawl.ProgressRunStarted])
		assert.Equal(t, 8, counts[crawl.ProgressPage])
		assert.Equal(t, 4, counts[crawl.ProgressRunFinished])
	})
}

func TestCrawler_ProbeEngine(t *testing.T) {
	t.Parallel()

	t.Run("reports result count and samples", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(5) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser(), ProbeKeyword: "golang"}

		res := c.ProbeEngine(context.Background(), "beta")

		assert.True(t, res.Reachable)
		assert.True(t, res.Success)
		assert.Equal(t, 5, res.ResultCount)
		assert.Len(t, res.Samples, 3)
		assert.Empty(t, res.Error)
		assert.Equal(t, []string{"https://beta.test/s?q=golang&first=1"}, exec.URLs())
	})

	t.Run("blocked engine is unreachable", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome {
			return serpwatch.Blocked("status 403", 403)
		}}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser()}

		res := c.ProbeEngine(context.Background(), "alpha")

		assert.False(t, res.Reachable)
		assert.False(t, res.Success)
		assert.True(t, res.Blocked)
		assert.Contains(t, res.Error, "blocked")
	})

	t.Run("zero results is reachable but not successful", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(0) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser()}

		res := c.ProbeEngine(context.Background(), "alpha")

		assert.True(t, res.Reachable)
		assert.False(t, res.Success)
		assert.Equal(t, crawl.DefaultProbeKeyword, res.Keyword)
	})

	t.Run("unknown engine reports error", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{Engines: testRegistry(t)}

		res := c.ProbeEngine(context.Background(), "gamma")

		assert.False(t, res.Reachable)
		assert.Contains(t, res.Error, "gamma")
	})

	t.Run("does not touch crawl health", func(t *testing.T) {
		t.Parallel()

		exec := &countingExecutor{outcomeFn: func(int, string) serpwatch.FetchOutcome { return items(1) }}
		c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser()}

		c.ProbeEngine(context.Background(), "alpha")

		assert.Empty(t, c.Health.Snapshot())
	})
}

func TestCrawler_ProbeAllEngines(t *testing.T) {
	t.Parallel()

	exec := &countingExecutor{outcomeFn: func(_ int, url string) serpwatch.FetchOutcome {
		if strings.Contains(url, "beta") {
			return serpwatch.FatalError(serpwatch.Errorf(serpwatch.ENETWORK, "timeout"))
		}
		return items(2)
	}}
	c := &crawl.Crawler{Engines: testRegistry(t), Executor: exec, Parser: pageParser()}

	results := c.ProbeAllEngines(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Engine)
	assert.True(t, results[0].Success)
	assert.Equal(t, "beta", results[1].Engine)
	assert.False(t, results[1].Success)
	assert.False(t, results[1].Blocked)
	assert.Contains(t, results[1].Error, "timeout")
}
