package main

import (
	"fmt"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

// HashCmd prints the commitment a site publishes before revealing a seed.
type HashCmd struct {
	Seed string `arg:"" help:"Server seed to hash"`
}

func (c *HashCmd) Run(g *Globals) error {
	hash := engine.CommitmentHash(c.Seed)
	if g.JSON {
		return printJSON(g.out, map[string]string{"hash": hash})
	}
	fmt.Fprintln(g.out, hash)
	return nil
}
