package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MJE43/pf-verify-go/internal/config"
	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/logging"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

// ScanCmd searches a nonce range for rounds whose metric matches a target.
type ScanCmd struct {
	Game      string            `arg:"" help:"Game id"`
	Server    string            `short:"s" required:"" help:"Revealed server seed"`
	Client    string            `short:"c" required:"" help:"Client seed"`
	From      uint64            `default:"0" help:"First nonce (inclusive)"`
	To        uint64            `required:"" help:"Last nonce (inclusive)"`
	Op        string            `default:"ge" enum:"eq,gt,ge,lt,le,between,outside" help:"Comparison against the metric"`
	Target    float64           `short:"t" required:"" help:"Target value"`
	Target2   float64           `help:"Upper bound for between/outside"`
	Tolerance float64           `help:"Tolerance for eq"`
	Limit     int               `short:"l" default:"100" help:"Maximum hits to report (0 for all)"`
	RTP       int               `help:"Return-to-player percentage (defaults to PFVERIFY_RTP)"`
	Param     map[string]string `short:"p" help:"Game parameter as key=value, repeatable"`
}

func (c *ScanCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.EnvFile...)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
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

	scanner := scan.NewScanner(
		scan.WithTimeout(cfg.ScanTimeout),
		scan.WithMaxRange(cfg.ScanMaxRange),
		scan.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := scanner.Scan(ctx, scan.ScanRequest{
		Game:       c.Game,
		Seeds:      games.Seeds{Server: c.Server, Client: c.Client},
		NonceStart: c.From,
		NonceEnd:   c.To,
		Params:     params,
		TargetOp:   scan.TargetOp(c.Op),
		TargetVal:  c.Target,
		TargetVal2: c.Target2,
		Tolerance:  c.Tolerance,
		Limit:      c.Limit,
	})
	if err != nil {
		return err
	}

	if g.JSON {
		return printJSON(g.out, result)
	}

	printHeader(g.out, fmt.Sprintf("%s · nonces %d..%d · %s %v", c.Game, c.From, c.To, c.Op, c.Target))
	for _, hit := range result.Hits {
		fmt.Fprintf(g.out, "%12d  %s\n", hit.Nonce, valueStyle.Render(fmt.Sprint(hit.Metric)))
	}
	s := result.Summary
	printField(g.out, "evaluated", s.TotalEvaluated)
	printField(g.out, "hits", s.HitsFound)
	if s.HitsFound > 0 {
		printField(g.out, "min / max", fmt.Sprintf("%v / %v", s.MinMetric, s.MaxMetric))
		printField(g.out, "mean", s.MeanMetric)
	}
	if s.TimedOut {
		fmt.Fprintln(g.out, lossStyle.Render("timed out; results are partial"))
	}
	return nil
}
