package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
)

// Run executes the probe command.
func (c *ProbeCmd) Run(deps *Dependencies) error {
	var results []*serpwatch.ProbeResult
	if len(c.Engines) == 0 {
		results = deps.Crawler.ProbeAllEngines(deps.Ctx)
	} else {
		for _, name := range c.Engines {
			if _, err := deps.Engines.Engine(name); err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
				return err
			}
		}
		for _, name := range c.Engines {
			results = append(results, deps.Crawler.ProbeEngine(deps.Ctx, name))
		}
	}

	working := 0
	for _, p := range results {
		printProbe(deps.Stdout, p)
		if p.Success {
			working++
		}
	}
	fmt.Fprintf(deps.Stdout, "%s %d/%d engines returned results\n", bold("Summary:"), working, len(results))
	return nil
}
