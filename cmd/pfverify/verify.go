package main

import (
	"fmt"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/config"
	"github.com/MJE43/pf-verify-go/internal/games"
)

// VerifyCmd recomputes a single round.
type VerifyCmd struct {
	Game   string            `arg:"" help:"Game id (see 'pfverify games')"`
	Server string            `short:"s" help:"Revealed server seed"`
	Client string            `short:"c" help:"Client seed"`
	Nonce  string            `short:"n" default:"0" help:"Round nonce"`
	RTP    int               `help:"Return-to-player percentage (defaults to PFVERIFY_RTP)"`
	Param  map[string]string `short:"p" help:"Game parameter as key=value, repeatable (e.g. -p difficulty=HARD)"`
}

type verifyOutput struct {
	Game           string           `json:"game"`
	Nonce          games.Nonce      `json:"nonce"`
	CommitmentHash string           `json:"commitment_hash"`
	GameResult     games.GameResult `json:"game_result"`
	EngineVersion  string           `json:"engine_version"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.EnvFile...)
	if err != nil {
		return err
	}

	params := make(map[string]any, len(c.Param)+1)
	for k, v := range c.Param {
		params[k] = v
	}
	switch {
	case c.RTP != 0:
		params["rtp"] = c.RTP
	case params["rtp"] == nil:
		params["rtp"] = cfg.RTP
	}

	nonce := games.Nonce(c.Nonce)
	v, err := games.Derive(c.Game, games.Seeds{Server: c.Server, Client: c.Client}, nonce, params)
	if err != nil {
		return err
	}

	if g.JSON {
		return printJSON(g.out, verifyOutput{
			Game:           v.Game,
			Nonce:          nonce,
			CommitmentHash: v.CommitmentHash,
			GameResult:     v.Result,
			EngineVersion:  buildinfo.Version,
		})
	}

	printHeader(g.out, fmt.Sprintf("%s · nonce %s", v.Game, nonce))
	printHash(g.out, "commitment", v.CommitmentHash)
	printHash(g.out, "hash", v.Result.Hash)
	printField(g.out, v.Result.MetricLabel, v.Result.Metric)
	return printDetails(g.out, v.Result.Details)
}
