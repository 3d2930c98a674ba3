package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	appLog "fixturecal/internal/log"
	"fixturecal/internal/view"
	"fixturecal/internal/web"
)

type serveCommand struct {
	Listen string `short:"l" long:"listen" env:"FIXTURECAL_LISTEN" description:"HTTP listen address (overrides config if set)"`
}

func (c *serveCommand) Execute(_ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if c.Listen != "" {
		a.cfg.Listen = c.Listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.prewarm(ctx)

	var sched *cron.Cron
	if a.cfg.Prewarm != "" {
		sched = cron.New(cron.WithLocation(a.loc))
		if _, err := sched.AddFunc(a.cfg.Prewarm, func() { a.prewarm(ctx) }); err != nil {
			return errors.Wrapf(err, "schedule prewarm %q", a.cfg.Prewarm)
		}
		sched.Start()
		appLog.Info("prewarm scheduled", "spec", a.cfg.Prewarm)
	}

	srv := web.NewServer(a.renderer, view.ParseWeekStart(a.cfg.WeekStart), a.cfg.BasicAuth)
	httpServer := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+a.cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-serverErr:
		if err != nil {
			return errors.Wrap(err, "http server")
		}
	}

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http server shutdown failed", err)
	}

	appLog.Info("fixturecal exiting", "cached_sources", a.loader.Len())
	return nil
}

// prewarm loads every source; failures are logged and retried next tick.
func (a *app) prewarm(ctx context.Context) {
	start := time.Now()
	err := a.loader.Prewarm(ctx, a.sources)
	if err != nil && ctx.Err() == nil {
		appLog.Error("prewarm incomplete", err, "cached", a.loader.Len(), "sources", len(a.sources))
		return
	}
	appLog.Debug("prewarm done", "cached", a.loader.Len(), "took", time.Since(start))
}
