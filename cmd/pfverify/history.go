package main

import (
	"fmt"

	"github.com/MJE43/pf-verify-go/internal/config"
	"github.com/MJE43/pf-verify-go/internal/engine"
	"github.com/MJE43/pf-verify-go/internal/games"
)

// HistoryCmd lists minesweeper rounds walking back from a chain hash.
type HistoryCmd struct {
	Hash   string `arg:"" help:"Most recent round hash (or the revealed server seed)"`
	Count  int    `short:"n" help:"Rounds to show (defaults to PFVERIFY_HISTORY_PAGE)"`
	Cursor string `help:"Continue from a previous page's next cursor"`
}

type historyOutput struct {
	Rounds     []games.BombRound `json:"rounds"`
	NextCursor string            `json:"next_cursor"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.EnvFile...)
	if err != nil {
		return err
	}

	count := c.Count
	if count == 0 {
		count = cfg.HistoryPage
	}
	if count < 1 || count > games.MaxHistoryPage {
		return fmt.Errorf("%w: --count must be between 1 and %d, got %d", engine.ErrInvalidInput, games.MaxHistoryPage, count)
	}
	start := c.Hash
	if c.Cursor != "" {
		start = c.Cursor
	}

	rounds, next, err := games.MinesweeperHistory(start, count)
	if err != nil {
		return err
	}

	if g.JSON {
		return printJSON(g.out, historyOutput{Rounds: rounds, NextCursor: next})
	}

	printHeader(g.out, fmt.Sprintf("minesweeper · %d rounds", len(rounds)))
	for i, r := range rounds {
		fmt.Fprintf(g.out, "%4d  %s  %s\n", i, hashStyle.Render(r.Hash), valueStyle.Render(fmt.Sprintf("bomb %d", r.Bomb)))
	}
	printHash(g.out, "next cursor", next)
	return nil
}
