package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/serpwatch"
	"github.com/fwojciec/serpwatch/crawl"
)

// Run executes the tasks command.
func (c *TasksCmd) Run(deps *Dependencies) error {
	filter := serpwatch.TaskFilter{Limit: c.Limit}
	if c.Engine != "" {
		filter.Engine = &c.Engine
	}

	tasks, err := deps.Tasks.FindTasks(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(deps.Stdout, "No tasks found. Use 'serpwatch crawl' to run one.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tENGINE\tKEYWORD\tSTATUS\tRESULTS\tERROR")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			t.CreatedAt.Local().Format("2006-01-02 15:04:05"), t.Engine, t.Keyword, t.Status,
			t.ResultCount, crawl.TruncateText(t.ErrorMessage, 60))
	}
	return tw.Flush()
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Stats.FindStatistics(deps.Ctx, c.Date)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	if len(stats) == 0 {
		fmt.Fprintln(deps.Stdout, "No statistics recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tENGINE\tKEYWORD\tRUNS\tFAILED\tRESULTS\tAVG")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			s.Date, s.Engine, s.Keyword, s.Runs, s.FailedRuns, s.TotalResults,
			crawl.FormatDuration(s.AverageDuration()))
	}
	return tw.Flush()
}
