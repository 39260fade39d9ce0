package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/press-api/internal/platform/postgres"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveAction(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, log)
	defer app.cleanup()
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		return err
	}
	return app.serve(ctx)
}

// serve runs the HTTP server until ctx is cancelled or listening fails, then drains in-flight
// requests for up to shutdownTimeout.
func (app *application) serve(ctx context.Context) error {
	cfg := app.config.Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      setupRouter(app.rest, cfg.MountPath, app.logger),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.Info("starting server",
			slog.Int("port", cfg.Port),
			slog.String("base_url", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		app.logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

func migrateAction(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrate needs database.driver postgres, got %q", cfg.Database.Driver)
	}
	command := c.Args().First()
	if command == "" {
		return errors.New("migrate: missing command (up, down, status, version, reset, redo)")
	}

	db, err := postgres.Open(c.Context, cfg.Database.URL, 1)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(c.Context, db, command, log, c.Args().Tail()...)
}
