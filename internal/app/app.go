package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/data/schema"
	"github.com/lawcomply/lawcomply-backend/internal/http"
	"github.com/lawcomply/lawcomply-backend/internal/observability"
	"github.com/lawcomply/lawcomply-backend/internal/platform/envutil"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Schema   *schema.Introspector
	Repos    Repos
	Clients  Clients
	Services Services

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

// New loads configuration, connects to PostgreSQL and wires the HTTP stack.
func New(ctx context.Context) (*App, error) {
	LoadDotEnv()
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}

	a, err := Build(log, cfg, pg.DB())
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}
	a.pg = pg
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	return a, nil
}

// Build wires repos, services and the router on top of an open database.
func Build(log *logger.Logger, cfg Config, gdb *gorm.DB) (*App, error) {
	introspector := schema.New(gdb, log)
	reposet := wireRepos(gdb, introspector, log)

	clients, err := wireClients(log, cfg)
	if err != nil {
		return nil, err
	}
	serviceset, err := wireServices(gdb, log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		return nil, err
	}

	var pinger interface {
		PingContext(ctx context.Context) error
	}
	if sqlDB, err := gdb.DB(); err == nil {
		pinger = sqlDB
	}
	handlerset := wireHandlers(log, serviceset, pinger)
	middleware := wireMiddleware(log, cfg, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       gdb,
		Router:   router,
		Cfg:      cfg,
		Schema:   introspector,
		Repos:    reposet,
		Clients:  clients,
		Services: serviceset,
	}, nil
}

// Run serves HTTP on the configured port until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &http.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
	return srv.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
		a.otelShutdown = nil
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
		a.pg = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate creates or updates the canonical tables and indexes.
func (a *App) Migrate() error {
	if err := db.AutoMigrateAll(a.DB); err != nil {
		return err
	}
	if err := db.EnsureComplianceIndexes(a.DB); err != nil {
		return err
	}
	a.Schema.Reset()
	return nil
}
