package main

import (
	"fmt"
	"text/tabwriter"
)

// Run executes the engines command.
func (c *EnginesCmd) Run(deps *Dependencies) error {
	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tSTATE\tPAGE PARAM\tSELECTORS\tURL")
	for _, name := range deps.Engines.Names() {
		e, err := deps.Engines.Engine(name)
		if err != nil {
			return err
		}
		state := "enabled"
		if e.Disabled {
			state = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", e.Name, e.Label(), state, e.PageStep, len(e.Selectors), e.URLTemplate)
	}
	return tw.Flush()
}
