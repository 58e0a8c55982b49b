package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/mise/ingredient"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	lines := ingredient.ParseAll(c.Lines)

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(lines)
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RAW\tAMOUNT\tNAME\tDISPLAY")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Raw, ingredient.Display(l.Amount, l.Unit), l.Name, ingredient.Format(l))
	}
	return tw.Flush()
}
