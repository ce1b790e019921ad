package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/checkia-backend/internal/data/db"
	httpserver "github.com/yungbote/checkia-backend/internal/http"
	"github.com/yungbote/checkia-backend/internal/observability"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

// Role selects which halves of the process New wires.
type Role int

const (
	RoleAPI Role = 1 << iota
	RoleWorker
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *httpserver.Server
	Jobs     JobTransport

	pg           *dbpkg.PostgresService
	otelShutdown func(context.Context) error
	sentry       bool
	cancel       context.CancelFunc
}

func New(ctx context.Context, cfg Config, role Role) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if role&RoleAPI != 0 {
		if err := cfg.validateAPI(); err != nil {
			log.Sync()
			return nil, err
		}
	}

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	sentryOn := observability.InitSentry(log, observability.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.Version,
	})

	pg, err := dbpkg.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	a := &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
		sentry:       sentryOn,
	}

	a.Repos = wireRepos(theDB, log)
	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init clients: %w", err)
	}
	a.Services = wireServices(theDB, log, cfg, a.Repos, a.Clients, metrics)

	if role&RoleAPI != 0 {
		handlers := wireHandlers(theDB, log, a.Services)
		mw := wireMiddleware(log, a.Services)
		a.Server = wireServer(log, cfg, handlers, mw, metrics)
	}

	if role&RoleWorker != 0 {
		reg, err := wireRegistry(theDB, log, a.Repos, a.Clients, a.Services, metrics)
		if err != nil {
			a.Close()
			return nil, err
		}
		exec := wireExecutor(theDB, log, cfg, a.Repos, reg, a.Services, metrics)
		a.Jobs, err = wireTransport(log, cfg, a.Clients, exec)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Start launches the background collectors and the job transport, if wired.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartPostgresCollector(a.Log, a.DB)
		a.Metrics.StartJobQueueCollector(ctx, a.Log, a.DB)
		if rc, ok := a.Clients.EventBus.(interface{ Redis() *redis.Client }); ok {
			a.Metrics.StartRedisCollector(ctx, a.Log, rc.Redis())
		}
	}

	if a.Jobs != nil {
		if err := a.Jobs.Start(ctx); err != nil {
			return fmt.Errorf("start job transport: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized for serving")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

// Wait blocks until the job transport drains after Start's context ends.
func (a *App) Wait() {
	if a != nil && a.Jobs != nil {
		a.Jobs.Wait()
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Wait()
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.sentry {
		observability.FlushSentry(2 * time.Second)
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// Migrate applies the schema and indexes without wiring anything else.
func Migrate(cfg Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	pg, err := dbpkg.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	defer pg.Close()
	return pg.AutoMigrateAll()
}
