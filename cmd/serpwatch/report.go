package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/crawl"
)

var (
	bold = color.New(color.Bold).SprintFunc()
	cyan = color.New(color.FgCyan, color.Bold).SprintFunc()
	good = color.New(color.FgGreen).SprintFunc()
	warn = color.New(color.FgYellow).SprintFunc()
	bad  = color.New(color.FgRed).SprintFunc()
)

// printCrawlReport prints per-engine health in engine order, then totals.
func printCrawlReport(w io.Writer, report *crawl.CrawlReport) {
	var engines []string
	for _, r := range report.Runs {
		if !slices.Contains(engines, r.Engine) {
			engines = append(engines, r.Engine)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(report.Health)) {
		if !slices.Contains(engines, name) {
			engines = append(engines, name)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cyan("Engine report"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENGINE\tRUNS\tOK\tBLOCKED\tFAILED\tPAGES\tRESULTS\tSUCCESS")
	for _, name := range engines {
		h := report.Health[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			name, h.Attempts, h.Successes, h.Blocks, h.Failures, h.Pages, h.Results, rate(h))
	}
	_ = tw.Flush()

	for _, name := range engines {
		if h := report.Health[name]; h.LastError != "" {
			fmt.Fprintf(w, "  %s last error: %s\n", name, crawl.TruncateText(h.LastError, 120))
		}
	}

	fmt.Fprintf(w, "%s %d results from %d runs\n", bold("Total:"), len(report.Results), len(report.Runs))
}

// printProbe prints one probe result with up to three samples.
func printProbe(w io.Writer, p *serpwatch.ProbeResult) {
	mark := good("✓")
	switch {
	case !p.Reachable:
		mark = bad("✗")
	case !p.Success:
		mark = warn("!")
	}

	fmt.Fprintf(w, "%s %s  %d results", mark, bold(p.Engine), p.ResultCount)
	if p.Candidate != "" {
		fmt.Fprintf(w, " via %s", p.Candidate)
	}
	fmt.Fprintf(w, " (%s)\n", crawl.FormatDuration(p.Duration))
	if p.Error != "" {
		fmt.Fprintf(w, "    %s\n", p.Error)
	}
	for _, s := range p.Samples {
		fmt.Fprintf(w, "    %d. %s\n", s.Rank+1, crawl.TruncateText(s.Title, 60))
		if s.URL != "" {
			fmt.Fprintf(w, "       %s\n", crawl.TruncateURL(s.URL, 80))
		}
	}
}

func rate(h serpwatch.EngineHealth) string {
	if h.Attempts == 0 {
		return "-"
	}
	r := h.SuccessRate()
	s := crawl.FormatRate(r)
	switch {
	case r >= 0.8:
		return good(s)
	case r >= 0.5:
		return warn(s)
	default:
		return bad(s)
	}
}
