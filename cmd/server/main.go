package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"bistro/internal/app"
	"bistro/internal/payments"
	"bistro/internal/platform/config"
	"bistro/internal/platform/httpserver"
	"bistro/internal/platform/logger"
	"bistro/internal/platform/postgres"
	platformredis "bistro/internal/platform/redis"
	"bistro/internal/ratelimit"
	"bistro/pkg/platform/audit"
	"bistro/pkg/platform/audit/publishers/kafka"
	"bistro/pkg/platform/audit/worker"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var rateStore ratelimit.Store
	if redisClient != nil {
		defer redisClient.Close()
		rateStore = ratelimit.NewRedisStore(redisClient.Client)
	}

	g, gctx := errgroup.WithContext(ctx)

	publisher, closeAudit, err := auditPublisher(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	if w, ok := publisher.(*worker.Worker); ok {
		g.Go(func() error {
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	var processor payments.Processor
	if cfg.StripeKey != "" {
		processor = payments.NewStripeProcessor(cfg.StripeKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := app.New(app.Options{
		Config:         cfg,
		Stores:         app.PostgresStores(db),
		Logger:         log,
		Registry:       registry,
		Publisher:      publisher,
		Processor:      processor,
		RateLimitStore: rateStore,
		Health: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	if err := a.Bootstrap(ctx, cfg); err != nil {
		return err
	}

	srv := httpserver.New(cfg.Addr, a.Handler, cfg.HTTP, log)
	g.Go(func() error {
		log.Info("starting bistro", "addr", cfg.Addr, "cart_policy", cfg.CartPolicy)
		return srv.Run(gctx)
	})

	return g.Wait()
}

// auditPublisher returns the Kafka publisher behind a worker when brokers are
// configured, and the log publisher otherwise.
func auditPublisher(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogPublisher(log), func() {}, nil
	}
	producer, err := kafka.New(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := producer.EnsureTopic(ensureCtx, cfg.Partitions, cfg.Replication); err != nil {
		producer.Close()
		return nil, nil, err
	}
	log.Info("audit events go to kafka", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return worker.NewWorker(producer, cfg.BufferSize, log), producer.Close, nil
}
