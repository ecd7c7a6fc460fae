// Package runtime assembles the payee manager process: stores, application
// services and the HTTP server.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/R3E-Network/payee_manager/internal/app"
	"github.com/R3E-Network/payee_manager/internal/app/httpapi"
	"github.com/R3E-Network/payee_manager/internal/app/storage/cache"
	"github.com/R3E-Network/payee_manager/internal/app/storage/memory"
	"github.com/R3E-Network/payee_manager/internal/app/storage/postgres"
	"github.com/R3E-Network/payee_manager/internal/config"
	"github.com/R3E-Network/payee_manager/internal/platform/migrations"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Resources holds the connections opened for the configured stores.
type Resources struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

// Close releases every open connection.
func (r Resources) Close() error {
	var errs []error
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	return errors.Join(errs...)
}

// OpenStores builds the payee store selected by cfg. The postgres driver
// opens and pings the database and applies migrations when configured to;
// a Redis address adds the list cache in front of whichever store is used.
func OpenStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, Resources, error) {
	var stores app.Stores
	var res Resources

	if cfg.Database.Driver == "postgres" {
		db, err := OpenDatabase(ctx, cfg.Database)
		if err != nil {
			return stores, res, fmt.Errorf("open database: %w", err)
		}
		res.DB = db
		if cfg.Database.MigrateOnStart {
			if err := migrations.Apply(ctx, db.DB); err != nil {
				_ = res.Close()
				return stores, Resources{}, fmt.Errorf("apply migrations: %w", err)
			}
		}
		stores.Payees = postgres.New(db)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable; payee list cache disabled")
			_ = client.Close()
		} else {
			res.Redis = client
			if stores.Payees == nil {
				stores.Payees = memory.New()
			}
			stores.Payees = cache.New(stores.Payees, client, cfg.Redis.TTL, log.Named("payee-cache"))
		}
	}

	return stores, res, nil
}

// OpenDatabase connects to PostgreSQL and verifies the connection.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg       *config.Config
	log       *logger.Logger
	app       *app.Application
	handler   http.Handler
	server    *http.Server
	resources Resources
	auditSink *httpapi.FileAuditSink
}

// NewApplication constructs the application described by cfg.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("payee-manager")
	}

	stores, res, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	application, err := app.New(cfg, stores, log)
	if err != nil {
		_ = res.Close()
		return nil, err
	}

	var sink *httpapi.FileAuditSink
	var auditSink httpapi.AuditSink
	if cfg.Server.AuditLogPath != "" {
		sink, err = httpapi.NewFileAuditSink(cfg.Server.AuditLogPath)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		auditSink = sink
	}

	handler := httpapi.NewHandler(application, httpapi.Options{
		AuthTokens:     cfg.Server.AuthTokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Audit:          httpapi.NewAuditLog(200, auditSink),
		Logger:         log.Named("http"),
	})

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     application,
		handler: handler,
		server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		resources: res,
		auditSink: sink,
	}, nil
}

// App exposes the composed application services.
func (a *Application) App() *app.Application { return a.app }

// Handler exposes the HTTP handler.
func (a *Application) Handler() http.Handler { return a.handler }

// Run starts the application services and the HTTP server and blocks until
// ctx is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Server.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the HTTP server, stops services and closes
// connections.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if a.auditSink != nil {
		if err := a.auditSink.Close(); err != nil {
			a.log.WithError(err).Warn("error closing audit log")
		}
	}
	if err := a.resources.Close(); err != nil {
		a.log.WithError(err).Warn("error closing connections")
	}
	return errors.Join(errs...)
}
