// Package thermopolio wires the HTTP application: storage, sessions,
// cache, mail queue, services, router and server lifecycle.
package thermopolio

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/thermopolio/thermopolio/internal/cache"
	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/migrations"
	"github.com/thermopolio/thermopolio/internal/rabbitmq"
	"github.com/thermopolio/thermopolio/internal/services/auth"
	"github.com/thermopolio/thermopolio/internal/services/catalog"
	"github.com/thermopolio/thermopolio/internal/sessions"
	"github.com/thermopolio/thermopolio/internal/storage/memory"
	"github.com/thermopolio/thermopolio/internal/storage/repository"
)

// repo is the full storage surface the services consume. Both the
// Postgres and the in-memory implementations satisfy it.
type repo interface {
	auth.UserRepository
	auth.TokenRepository
	catalog.Repository
}

// App is the assembled HTTP application.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New builds the application from the configuration.
//
// With a storage connection string configured the Postgres repository
// is used and migrations run on startup; otherwise the seeded
// in-memory repository serves demo data. Sessions and the catalog
// cache live in Redis in prod and in process memory elsewhere.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	var (
		store repo
		db    *repository.Storage
	)
	if cfg.StorageConnectionString != "" {
		var err error
		db, err = repository.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			return nil, err
		}
		store = db
	} else {
		seeded, err := memory.NewSeeded()
		if err != nil {
			return nil, err
		}
		store = seeded
		logger.Info("no storage configured, serving seeded in-memory data")
	}

	var (
		sessionStore sessions.Store
		catalogCache catalog.Cache
	)
	if cfg.IsProd() {
		redisStore, err := sessions.NewRedisStore(ctx, cfg.RedisConnection, cfg.SessionTTL)
		if err != nil {
			return nil, err
		}
		sessionStore = redisStore

		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		catalogCache = redisCache
	} else {
		sessionStore = sessions.NewMemoryStore(cfg.SessionTTL)
	}

	var (
		mailPub  auth.MailPublisher
		amqpConn *amqp.Connection
	)
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn)
		if err != nil {
			return nil, err
		}
		amqpConn = conn
		mailPub = rabbitmq.NewPublisher(ch)
	} else {
		logger.Info("mail queue not configured, mail jobs are dropped")
	}

	authService := auth.New(store, store, mailPub, logger, cfg.PublicBaseURL)
	catalogService := catalog.New(store, catalogCache, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, catalogService, sessionStore, store)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.db != nil {
			a.db.DB.Close()
		}
		if a.amqp != nil {
			a.amqp.Close()
		}
		return err
	}
}
