// Package server assembles the reference backend: PostgreSQL repositories,
// verification token storage, the identity service and the REST API.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/eduxperience/eduxperience/internal/logging"
	"github.com/eduxperience/eduxperience/internal/server/config"
	"github.com/eduxperience/eduxperience/internal/server/notifications"
	"github.com/eduxperience/eduxperience/internal/server/repositories/repomanager"
	"github.com/eduxperience/eduxperience/internal/server/services"
	"github.com/eduxperience/eduxperience/internal/server/verifications"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	hs "github.com/eduxperience/eduxperience/internal/server/http"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	identity *services.IdentityService
	registry *prometheus.Registry
}

// openDB is a seam so tests can substitute the database.
var openDB = repomanager.Open

// NewApp connects to PostgreSQL, applies migrations and assembles the
// services. Redis is used for verification tokens when configured.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var vs verifications.Store = verifications.NewMemoryStore()
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := app.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		vs = verifications.NewRedisStore(app.redis)
	} else {
		logger.Warn(ctx, "redis not configured, verification tokens are kept in memory")
	}

	app.identity = services.NewIdentityService(db, rm, vs, notifications.NewLogNotifier(logger), c, logger)

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return app, nil
}

// Close releases the database and Redis connections.
func (app *App) Close() error {
	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := hs.NewServer(app.config.EndpointAddrHTTP, app.identity, app.logger, app.registry, app.registry)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves the API until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
