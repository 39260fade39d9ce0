package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/press-api/internal/api"
	"github.com/phrazzld/press-api/internal/config"
	"github.com/phrazzld/press-api/internal/content"
	"github.com/phrazzld/press-api/internal/events"
	"github.com/phrazzld/press-api/internal/platform/cache"
	"github.com/phrazzld/press-api/internal/platform/logger"
	"github.com/phrazzld/press-api/internal/platform/memory"
	"github.com/phrazzld/press-api/internal/platform/postgres"
	"github.com/phrazzld/press-api/internal/rest"
	"github.com/phrazzld/press-api/internal/service/access"
	"github.com/phrazzld/press-api/internal/service/auth"
	"github.com/phrazzld/press-api/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

const maxOpenConns = 25

// application holds the shared dependencies of a running server so they can
// be released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	redis *redis.Client
	mem   *memory.DB

	registry *content.Registry
	posts    store.PostStore
	terms    store.TermStore
	options  store.OptionStore
	users    store.UserStore

	authenticator *auth.Authenticator
	emitter       *events.InMemoryEventEmitter
	rest          *rest.Server
}

// loadConfig reads the file named by --config, then applies command flags.
func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(c.String(configFlag))
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet(portFlag) {
		cfg.Server.Port = c.Int(portFlag)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

// newApplication wires stores, caching, authentication and the REST server
// from cfg. Call cleanup when done, even after a partial failure.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: log}

	var err error
	app.registry, err = content.Load(cfg.Content.RegistryFile)
	if err != nil {
		return app, fmt.Errorf("failed to load content registry: %w", err)
	}
	log.Info("content registry loaded",
		slog.Int("post_types", len(app.registry.PostTypes())),
		slog.Int("statuses", len(app.registry.Statuses())),
		slog.Int("taxonomies", len(app.registry.Taxonomies())))

	if err := app.openStores(ctx); err != nil {
		return app, err
	}

	app.emitter = events.NewInMemoryEventEmitter(log.With(slog.String("component", "events")))
	if err := app.setupCache(ctx); err != nil {
		return app, err
	}

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return app, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	log.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	app.authenticator = auth.NewAuthenticator(tokens, app.users, auth.NewBcryptVerifier(), cfg.Auth.CookieName)

	if cfg.Content.SeedDemoContent {
		if err := app.seed(ctx); err != nil {
			return app, fmt.Errorf("failed to seed demo content: %w", err)
		}
	}

	deps := &api.Deps{
		Content: app.registry,
		Posts:   app.posts,
		Terms:   app.terms,
		Options: app.options,
		Users:   app.users,
		Access:  access.NewChecker(app.registry),
		Events:  app.emitter,
		BaseURL: cfg.Server.BaseURL,
		Logger:  log.With(slog.String("component", "api")),
	}
	routes, err := api.NewRegistry(deps, app.authenticator)
	if err != nil {
		return app, fmt.Errorf("failed to build route registry: %w", err)
	}
	app.rest = rest.NewServer(routes,
		rest.WithBaseURL(cfg.Server.BaseURL),
		rest.WithMountPath(cfg.Server.MountPath),
		rest.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		rest.WithAuthenticator(app.authenticator),
		rest.WithLogger(log))
	return app, nil
}

func (app *application) openStores(ctx context.Context) error {
	switch app.config.Database.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, app.config.Database.URL, maxOpenConns)
		if err != nil {
			return err
		}
		app.db = db
		app.posts = postgres.NewPostgresPostStore(db, app.logger)
		app.terms = postgres.NewPostgresTermStore(db, app.logger)
		app.options = postgres.NewPostgresOptionStore(db, app.logger)
		app.users = postgres.NewPostgresUserStore(db, app.logger)
	default:
		app.mem = memory.New()
		app.posts = app.mem.Posts()
		app.terms = app.mem.Terms()
		app.options = app.mem.Options()
		app.users = app.mem.Users()
	}
	app.logger.Info("content stores ready", slog.String("driver", app.config.Database.Driver))
	return nil
}

// setupCache puts the Redis object cache in front of the option and term
// stores and flushes it from content events.
func (app *application) setupCache(ctx context.Context) error {
	cfg := app.config.Cache
	if cfg.RedisAddr == "" {
		return nil
	}
	app.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	objects := cache.NewObjectCache(app.redis, "press",
		time.Duration(cfg.TTLSeconds)*time.Second,
		app.logger.With(slog.String("component", "cache")))
	if err := objects.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	app.options = cache.NewOptionStore(app.options, objects)
	app.terms = cache.NewTermStore(app.terms, objects)
	app.emitter.RegisterHandler(cache.NewInvalidator(objects))
	app.logger.Info("object cache enabled", slog.String("redis_addr", cfg.RedisAddr))
	return nil
}

// cleanup releases external connections.
func (app *application) cleanup() {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error("cleanup failed", slog.String("error", err.Error()))
	}
}
