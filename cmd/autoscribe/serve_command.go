package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/autoscribe/internal/api"
	"github.com/hoanghai1803/autoscribe/internal/storage"
)

const (
	purgeInterval   = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withApp(signalCtx, func(a *app) error {
				return serve(signalCtx, a)
			})
		},
	}
}

func serve(ctx context.Context, a *app) error {
	router := api.NewRouter(api.Deps{
		Store:     a.store,
		Schedules: a.manager,
		Runner:    a.runner,
		Generator: a.generator,
		Analyzer:  a.analyzer,
		Extractor: a.fetcher,
		Optimizer: a.optimizer,
		Provider:  a.provider,
		Limiter:   a.limiter,
		Config:    a.cfg,
	})

	// Localhost only; there is no authentication.
	addr := fmt.Sprintf("localhost:%d", a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.cfg.Scheduler.Enabled {
		go a.runner.Run(ctx, a.cfg.Scheduler.TickInterval())
	} else {
		slog.Info("scheduler disabled, serving API only")
	}
	go runPurgeLoop(ctx, a.store, a.cfg.Logs.RetentionDays)

	if a.cfg.Server.AutoOpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser("http://" + addr)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// runPurgeLoop deletes generation logs older than the retention period once
// at startup and then daily until ctx is done.
func runPurgeLoop(ctx context.Context, store *storage.Store, retentionDays int) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		purgeOldLogs(ctx, store, retentionDays, time.Now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func purgeOldLogs(ctx context.Context, store *storage.Store, retentionDays int, now time.Time) int64 {
	n, err := store.PurgeLogsBefore(ctx, now.AddDate(0, 0, -retentionDays))
	if err != nil {
		slog.Error("log retention purge failed", "error", err)
		return 0
	}
	if n > 0 {
		slog.Info("purged old generation logs", "deleted", n, "retention_days", retentionDays)
	}
	return n
}

// openBrowser opens the given URL in the user's default browser.
// It is a fire-and-forget operation; errors are silently ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
