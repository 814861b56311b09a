package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/excelize"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	var filter serpwatch.ResultFilter
	if c.Keyword != "" {
		filter.Keyword = &c.Keyword
	}
	if c.Engine != "" {
		filter.Engine = &c.Engine
	}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	results, err := deps.Results.FindResults(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	var stats []*serpwatch.Statistics
	if c.Stats {
		if stats, err = deps.Stats.FindStatistics(deps.Ctx, ""); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
			return err
		}
	}

	f, err := os.Create(c.Out)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	defer f.Close()

	if err := excelize.NewExporter().Export(f, results, stats); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d results to %s\n", len(results), c.Out)
	return nil
}
