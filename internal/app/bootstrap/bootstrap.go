package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	governanceengine "condogov/contexts/assembly-governance/governance-engine"
	postgresadapter "condogov/contexts/assembly-governance/governance-engine/adapters/postgres"
	redisadapter "condogov/contexts/assembly-governance/governance-engine/adapters/redis"
	workerapp "condogov/contexts/assembly-governance/governance-engine/application/workers"
	"condogov/contexts/assembly-governance/governance-engine/ports"
	"condogov/internal/platform/cache"
	"condogov/internal/platform/config"
	"condogov/internal/platform/db"
	"condogov/internal/platform/httpserver"
	"condogov/internal/platform/logging"
	"condogov/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 10 * time.Second

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *cache.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	nats         *messaging.NATS
	outboxRelay  workerapp.OutboxRelay
	minutes      workerapp.MinutesConsumer
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "api")
	pg, repo, err := connectRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	var idempotency ports.IdempotencyStore = repo
	var rdb *cache.Redis
	if cfg.RedisEnabled() {
		rdb, err = cache.Connect(cfg)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		idempotency = redisadapter.NewIdempotencyStore(rdb.Client, cfg.ServiceName+":idempotency", postgresadapter.SystemClock{}, logger)
		logger.Info("redis idempotency store enabled",
			"event", "bootstrap_redis_idempotency_enabled",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	module := newModule(cfg, repo, idempotency, logger)
	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    rdb,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "worker")
	pg, repo, err := connectRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &WorkerApp{
		postgres:     pg,
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}

	var bus interface {
		ports.EventPublisher
		ports.EventSubscriber
	}
	if cfg.NATSEnabled() {
		app.nats, err = messaging.ConnectNATS(cfg.NATSURL, cfg.ServiceName, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		bus = app.nats
	} else {
		logger.Warn("NATS_URL not set, relaying events in process",
			"event", "bootstrap_in_process_bus",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		bus = messaging.NewBus(logger)
	}

	module := newModule(cfg, repo, repo, logger)
	app.outboxRelay = workerapp.OutboxRelay{
		Outbox:    repo,
		Publisher: bus,
		Clock:     postgresadapter.SystemClock{},
		BatchSize: cfg.OutboxBatchSize,
		Logger:    logger,
	}
	app.minutes = workerapp.MinutesConsumer{
		Subscriber:    bus,
		Minutes:       module.Handler.Meetings,
		ConsumerGroup: "governance-minutes-cg",
		Logger:        logger,
	}
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.minutes.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"outbox_relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if _, err := w.outboxRelay.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("outbox relay cycle failed",
					"event", "bootstrap_outbox_cycle_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.nats != nil {
		errs = append(errs, w.nats.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	return errors.Join(errs...)
}

func newLogger(cfg config.Config, process string) *slog.Logger {
	logger := logging.New(logging.Options{
		Service: cfg.ServiceName,
		Process: process,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	slog.SetDefault(logger)
	return logger
}

func connectRepository(cfg config.Config, logger *slog.Logger) (*db.Postgres, *postgresadapter.Repository, error) {
	if cfg.PostgresDSN == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	return pg, postgresadapter.NewRepository(pg.DB, logger), nil
}

func newModule(
	cfg config.Config,
	repo *postgresadapter.Repository,
	idempotency ports.IdempotencyStore,
	logger *slog.Logger,
) governanceengine.Module {
	return governanceengine.NewModule(governanceengine.Dependencies{
		Sites:           repo,
		Meetings:        repo,
		Idempotency:     idempotency,
		Outbox:          repo,
		Clock:           postgresadapter.SystemClock{},
		IDGen:           postgresadapter.UUIDGenerator{},
		IdempotencyTTL:  cfg.IdempotencyTTL,
		MinutesLocation: cfg.MinutesLocation(),
		Logger:          logger,
	})
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
