package main

import (
	"context"
	"os"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/crawl"
	"github.com/fwojciec/serpwatch/goquery"
	swhttp "github.com/fwojciec/serpwatch/http"
	swslog "github.com/fwojciec/serpwatch/slog"
)

// loadEngines returns the built-in engine table, or the table in path when
// path is set. Every selector is compiled up front so a bad table fails
// before any request.
func loadEngines(path string) (*serpwatch.Registry, error) {
	configs := serpwatch.DefaultEngines()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "open engines file: %v", err)
		}
		defer f.Close()

		configs, err = serpwatch.LoadEngines(f)
		if err != nil {
			return nil, err
		}
	}

	parser := goquery.NewParser()
	for _, c := range configs {
		if err := parser.Validate(c); err != nil {
			return nil, err
		}
	}
	return serpwatch.NewRegistry(configs...)
}

// newCrawler wires the fetch stack described by flags. The returned
// function releases idle connections.
func (m *Main) newCrawler(ctx context.Context, flags FetchFlags, deps *Dependencies) (*crawl.Crawler, func(), error) {
	logger := deps.Logger
	closeFn := func() {}

	executor := m.Executor
	if executor == nil {
		if flags.DelayMin > flags.DelayMax {
			return nil, nil, serpwatch.Errorf(serpwatch.EINVALID, "delay-min %s exceeds delay-max %s", flags.DelayMin, flags.DelayMax)
		}

		var agents serpwatch.UserAgentProvider = swhttp.NewStaticUserAgents(nil)
		if flags.UAURL != "" {
			remote := swhttp.NewRemoteUserAgents(flags.UAURL)
			n, err := remote.Load(ctx)
			if err != nil {
				logger.Warn("user agent source unavailable, using built-in list", "url", flags.UAURL, "err", err)
			} else {
				logger.Info("loaded user agents", "url", flags.UAURL, "count", n)
			}
			agents = remote
		}

		opts := []swhttp.Option{
			swhttp.WithTimeout(flags.Timeout),
			swhttp.WithUserAgents(agents),
		}
		if flags.ChromeTLS {
			opts = append(opts, swhttp.WithChromeTLS())
		}
		fetcher := swhttp.NewFetcher(opts...)
		closeFn = func() { _ = fetcher.Close() }

		exec := crawl.NewExecutor(swslog.NewLoggingFetcher(fetcher, logger))
		exec.DelayMin = flags.DelayMin
		exec.DelayMax = flags.DelayMax
		exec.BlockDelay = flags.BlockDelay
		executor = exec
	}

	if flags.Concurrency < 1 {
		return nil, nil, serpwatch.Errorf(serpwatch.EINVALID, "concurrency must be at least 1, got %d", flags.Concurrency)
	}

	crawler := &crawl.Crawler{
		Engines:      deps.Engines,
		Executor:     swslog.NewLoggingExecutor(executor, logger),
		Parser:       swslog.NewLoggingParser(goquery.NewParser(), logger),
		Limiter:      crawl.NewEngineLimiter(flags.Interval),
		Results:      swslog.NewLoggingResultWriter(deps.Results, logger),
		Tasks:        deps.Tasks,
		Stats:        deps.Stats,
		Concurrency:  flags.Concurrency,
		MaxRetries:   flags.Retries,
		ProbeKeyword: flags.ProbeKeyword,
	}
	return crawler, closeFn, nil
}
