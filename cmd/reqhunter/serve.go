package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdiasanta/req-hunter/internal/api"
	"github.com/mdiasanta/req-hunter/internal/logger"
	"github.com/mdiasanta/req-hunter/internal/scheduler"
	"github.com/mdiasanta/req-hunter/internal/service"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scrape scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	sched := scheduler.New(a.scheduleRepo, a.scrape, cfg.Scheduler.PollInterval(), a.metrics)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	router := api.SetupRouter(api.Deps{
		DB:        a.db,
		Sources:   service.NewSourceService(a.sourceRepo),
		Jobs:      service.NewJobService(a.jobRepo),
		Scrape:    a.scrape,
		Scheduler: sched,
		LogFile:   a.logFile,
		Gatherer:  a.registry,
	}, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}
