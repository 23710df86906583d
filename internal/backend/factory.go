package backend

import (
	"context"
	"errors"
	"fmt"

	"productivity/internal/amqp"
	"productivity/internal/auth"
	"productivity/internal/cache"
	"productivity/internal/log"
	"productivity/internal/services"
	"productivity/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the configured store, connects the optional change
// event publisher and builds the services on top of them.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(ctx, config)
	if err != nil {
		return nil, err
	}

	var (
		notifier services.Notifier
		client   *amqp.Client
	)
	if config.AMQPURL != "" {
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
			client = nil
		} else {
			notifier = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	opts := services.Options{
		MaxPageLimit: config.MaxPageLimit,
		Notifier:     notifier,
		Logger:       f.logger,
	}
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AccessTokenTTL, config.RefreshTokenTTL)
	admin := services.NewAdminService(store, config.AdminStatsTTL, opts)

	caches := cache.NewManager(f.logger)
	caches.Register(admin.StatsCache())
	if config.CacheCleanupInterval > 0 {
		caches.StartCleanup(config.CacheCleanupInterval)
	}

	f.logger.Info("Initialized backend",
		log.FieldBackend, config.Type.String(),
		"amqp_enabled", notifier != nil)

	return &Result{
		Store:     store,
		Tokens:    tokens,
		Expenses:  services.NewExpenseService(store, opts),
		Tasks:     services.NewTaskService(store, opts),
		Dashboard: services.NewDashboardService(store, store, opts),
		Admin:     admin,
		Accounts:  services.NewAccountService(store, auth.NewPasswordHasher(config.BcryptCost), tokens, opts),
		Caches:    caches,
		Notifying: notifier != nil,
		Cleanup: func() error {
			caches.Stop()
			var errs []error
			if client != nil {
				errs = append(errs, client.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config) (*storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.OpenSQLite(ctx, config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return store, nil
	case PostgresBackend:
		store, err := storage.OpenPostgres(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Opened Postgres store")
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
