package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/MJE43/pf-verify-go/internal/games"
)

// GamesCmd lists the registered games.
type GamesCmd struct{}

func (c *GamesCmd) Run(g *Globals) error {
	specs := games.ListGames()
	if g.JSON {
		return printJSON(g.out, specs)
	}

	tw := tabwriter.NewWriter(g.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHASH\tMETRIC")
	for _, s := range specs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Hash, s.MetricLabel)
	}
	return tw.Flush()
}
