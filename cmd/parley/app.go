package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parley/internal/account"
	attrservice "parley/internal/attributes/service"
	attrstore "parley/internal/attributes/store"
	"parley/internal/platform/config"
	"parley/internal/platform/httpserver"
	"parley/internal/platform/metrics"
	"parley/internal/platform/postgres"
	redisclient "parley/internal/platform/redis"
	"parley/internal/requests/lock"
	"parley/internal/requests/processors"
	"parley/internal/requests/service"
	reqstore "parley/internal/requests/store"
	"parley/pkg/platform/audit"
	auditmemory "parley/pkg/platform/audit/store/memory"
	auditpostgres "parley/pkg/platform/audit/store/postgres"
	txcontext "parley/pkg/platform/tx"
)

// app is one engine: stores, controllers and the infrastructure behind them.
// Postgres and Redis are used when configured; otherwise everything stays
// in memory.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	identity *account.Identity

	db    *postgres.DB
	redis *redisclient.Client

	audit      *audit.Publisher
	attributes *attrservice.Service
	outgoing   *service.Outgoing
	incoming   *service.Incoming
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		identity: account.NewIdentity(cfg.Address()),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	if db != nil && cfg.Database.MigrateOnStart {
		version, err := postgres.Migrate(ctx, db.SQL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.InfoContext(ctx, "database migrated", "schema_version", version)
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	a.redis = rc

	var (
		attributes attrservice.Store
		requests   service.Store
		auditStore audit.Store
	)
	if db != nil {
		attributes = attrstore.NewPostgres(db.Pool)
		requests = reqstore.NewPostgres(db.SQL)
		auditStore = auditpostgres.New(db.SQL)
	} else {
		attributes = attrstore.NewInMemory()
		requests = reqstore.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
	}
	a.audit = audit.NewPublisher(auditStore)

	a.attributes = attrservice.New(attributes,
		attrservice.WithLogger(logger),
		attrservice.WithMetrics(a.metrics),
		attrservice.WithAuditPublisher(a.audit),
	)
	registry := processors.NewDefaultRegistry(processors.Dependencies{
		Attributes:    a.attributes,
		Identity:      a.identity,
		Relationships: account.NewInMemoryRelationships(cfg.PeerAddresses()...),
		Logger:        logger,
	})

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(a.metrics),
		service.WithAuditPublisher(a.audit),
	}
	if rc != nil {
		opts = append(opts, service.WithLocker(lock.NewRedis(rc.Client,
			lock.WithTTL(cfg.Redis.LockTTL),
			lock.WithRedisWaitObserver(a.metrics),
		)))
	}
	if db != nil {
		opts = append(opts, service.WithTransactor(txcontext.NewSQLRunner(db.SQL)))
	}
	deps := service.Dependencies{Store: requests, Registry: registry, Identity: a.identity}
	a.outgoing = service.NewOutgoing(deps, opts...)
	a.incoming = service.NewIncoming(deps, opts...)

	logger.InfoContext(ctx, "engine ready",
		"address", cfg.Address(),
		"peers", len(cfg.Identity.Peers),
		"postgres", db != nil,
		"redis", rc != nil,
		"item_types", registry.Types(),
	)
	return a, nil
}

func (a *app) healthChecks() []httpserver.HealthCheck {
	var checks []httpserver.HealthCheck
	if a.db != nil {
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: a.db.Health})
	}
	if a.redis != nil {
		checks = append(checks, httpserver.HealthCheck{Name: "redis", Check: a.redis.Health})
	}
	return checks
}

func (a *app) close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
