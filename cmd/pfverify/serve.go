package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"

	"github.com/MJE43/pf-verify-go/internal/api"
	"github.com/MJE43/pf-verify-go/internal/config"
	"github.com/MJE43/pf-verify-go/internal/logging"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr     string `help:"Listen address (defaults to PFVERIFY_ADDR)"`
	LogLevel string `help:"Log level (defaults to PFVERIFY_LOG_LEVEL)"`
}

const shutdownTimeout = 10 * time.Second

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.EnvFile...)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	clock := quartz.NewReal()
	scanner := scan.NewScanner(
		scan.WithTimeout(cfg.ScanTimeout),
		scan.WithMaxRange(cfg.ScanMaxRange),
		scan.WithLogger(logger),
		scan.WithClock(clock),
	)
	server := api.NewServer(api.Options{
		Logger:         logger,
		Clock:          clock,
		Scanner:        scanner,
		DefaultRTP:     cfg.RTP,
		HistoryPage:    cfg.HistoryPage,
		RequestTimeout: cfg.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := server.Start(cfg.Addr); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
