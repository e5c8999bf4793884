package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/dive-sac-agent/internal/adapter/browser"
	httpadapter "github.com/couchcryptid/dive-sac-agent/internal/adapter/http"
	"github.com/couchcryptid/dive-sac-agent/internal/agent"
	"github.com/couchcryptid/dive-sac-agent/internal/config"
	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	scope := domain.NewScope(cfg.MatchURLs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := browser.Connect(ctx, browser.Config{
		DebuggerURL: cfg.DebuggerURL,
		Bin:         cfg.BrowserBin,
		Headless:    cfg.BrowserHeadless,
		StartURL:    cfg.StartURL,
		Scope:       scope,
	}, logger)
	if err != nil {
		logger.Error("failed to start browser session", "error", err)
		os.Exit(1)
	}

	doc, err := browser.NewDocument(ctx, session.Page(), scope, logger)
	if err != nil {
		logger.Error("failed to bind page", "error", err)
		_ = session.Close()
		os.Exit(1)
	}

	a := agent.New(doc, agent.Settings{
		Interval:  cfg.PollInterval,
		Precision: cfg.RatePrecision,
		Layouts:   domain.DefaultLayouts(),
	}, logger, metrics)

	// Mutation notifications shorten detection latency; polling remains the
	// fallback when the observer cannot be installed.
	if cfg.MutationObserve {
		if err := doc.ObserveMutations(ctx, func() {
			metrics.MutationNudges.Inc()
			a.Nudge()
		}); err != nil {
			logger.Warn("mutation observer unavailable, polling only", "error", err)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady(session, a), logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.Run(gctx)
	})

	// Shut down when a signal arrives or either component fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		a.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("agent error", "error", err)
	}

	if err := session.Close(); err != nil {
		logger.Error("browser close error", "error", err)
	}
	logger.Info("shutdown complete")
}
