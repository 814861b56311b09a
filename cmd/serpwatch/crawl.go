package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/bloom"
	"github.com/fwojciec/serpwatch/crawl"
)

// dedupCapacity sizes the duplicate filter of --dedup.
const dedupCapacity = 100_000

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if c.Pages < 0 {
		err := serpwatch.Errorf(serpwatch.EINVALID, "pages must not be negative, got %d", c.Pages)
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	keywords, err := c.resolveKeywords(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	var dedup *bloom.DedupWriter
	if c.Dedup && deps.Crawler.Results != nil {
		dedup = bloom.NewDedupWriter(deps.Crawler.Results, dedupCapacity)
		if err := c.seedDedup(deps, dedup, keywords); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
			return err
		}
		deps.Crawler.Results = dedup
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressPage:
			fmt.Fprintf(deps.Stdout, "  %s %q page %d: %d results\n", event.Engine, event.Keyword, event.Page+1, event.Results)
		case crawl.ProgressStoreFailed:
			fmt.Fprintf(deps.Stderr, "  store %s %q: %v\n", event.Engine, event.Keyword, event.Error)
		case crawl.ProgressRunFinished:
			r := event.Report
			if r.Status != serpwatch.StatusCompleted {
				fmt.Fprintf(deps.Stdout, "  %s %q stopped: %s\n", r.Engine, r.Keyword, describeStop(r))
			}
		}
	}

	report, err := deps.Crawler.RunCrawl(deps.Ctx, crawl.CrawlRequest{
		Keywords: keywords,
		Engines:  c.Engine,
		MaxPages: c.Pages,
	}, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	printCrawlReport(deps.Stdout, report)
	if dedup != nil && dedup.Dropped() > 0 {
		fmt.Fprintf(deps.Stdout, "Skipped %d duplicate results\n", dedup.Dropped())
	}
	if report.Canceled {
		fmt.Fprintln(deps.Stdout, "Crawl interrupted; finished pages were kept.")
	}
	return nil
}

// seedDedup loads the stored results of every keyword into dedup.
func (c *CrawlCmd) seedDedup(deps *Dependencies, dedup *bloom.DedupWriter, keywords []string) error {
	if deps.Results == nil {
		return nil
	}
	for _, kw := range keywords {
		stored, err := deps.Results.FindResults(deps.Ctx, serpwatch.ResultFilter{Keyword: &kw})
		if err != nil {
			return err
		}
		dedup.Seed(stored)
	}
	if n := dedup.Remembered(); n > 0 {
		fmt.Fprintf(deps.Stdout, "Remembering about %d stored results for dedup.\n", n)
	}
	return nil
}

// resolveKeywords picks the keywords to crawl: the arguments, else the
// active keywords, else the default list, which is then stored.
func (c *CrawlCmd) resolveKeywords(deps *Dependencies) ([]string, error) {
	if len(c.Keywords) > 0 {
		return c.Keywords, nil
	}

	active, err := deps.Keywords.ActiveKeywords(deps.Ctx)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return active, nil
	}

	defaults := serpwatch.DefaultKeywords()
	for _, kw := range defaults {
		if _, err := deps.Keywords.AddKeyword(deps.Ctx, kw); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(deps.Stdout, "No keywords configured; using %d defaults.\n", len(defaults))
	return defaults, nil
}

func describeStop(r *serpwatch.RunReport) string {
	switch r.Status {
	case serpwatch.StatusStoppedEmpty:
		return fmt.Sprintf("no results on page %d", r.Pages)
	default:
		if r.Err != "" {
			return r.Err
		}
		return string(r.Status)
	}
}
