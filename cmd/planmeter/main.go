package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/planmeter/pkg/access"
	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/clientip"
	cfgloader "github.com/dmitrymomot/planmeter/pkg/config"
	"github.com/dmitrymomot/planmeter/pkg/httpserver"
	"github.com/dmitrymomot/planmeter/pkg/jwt"
	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/metrics"
	"github.com/dmitrymomot/planmeter/pkg/ratelimiter"
	"github.com/dmitrymomot/planmeter/pkg/redis"
	"github.com/dmitrymomot/planmeter/pkg/requestid"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

func main() {
	var cfg config
	cfgloader.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.App.Env, cfg.App.Service),
		logger.FromConfig(cfg.Log),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			access.LoggerExtractor(),
		),
	)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("planmeter stopped", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, cfg.App.StartupTimeout)
	defer cancel()

	tokens, err := jwt.NewFromConfig(cfg.JWT)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	store, err := openBackend(startCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	hooks := []func(){store.close}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalogOpts := []catalog.Option{
		catalog.WithUsageChecker(store.subs),
		catalog.WithLogger(log),
	}
	if cfg.Redis.Enabled() {
		rdb, err := redis.Connect(startCtx, cfg.Redis)
		if err != nil {
			store.close()
			return fmt.Errorf("redis: %w", err)
		}
		hooks = append(hooks, func() { _ = rdb.Close() })
		store.checks["redis"] = redis.Healthcheck(rdb)
		catalogOpts = append(catalogOpts, catalog.WithCache(
			catalog.NewRedisCache(rdb, cfg.Redis.Key("plans"), cfg.App.PlanCacheTTL),
		))
	}
	plans := catalog.NewService(store.plans, catalogOpts...)

	if cfg.App.SeedFile != "" {
		if err := seedPlans(startCtx, plans, cfg.App.SeedFile, log); err != nil {
			runHooks(hooks)
			return err
		}
	}

	subs := subscription.NewService(store.subs, plans,
		subscription.WithLogger(log),
		subscription.WithObserver(metrics.NewSubscriptionObserver(reg)),
		subscription.WithOperationTimeout(cfg.App.OperationTimeout),
	)

	var limiter *ratelimiter.Bucket
	if cfg.Rate.Enabled {
		limits := ratelimiter.NewMemoryStore()
		hooks = append(hooks, limits.Close)
		if limiter, err = ratelimiter.NewBucket(limits, cfg.Rate); err != nil {
			runHooks(hooks)
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	opts := []httpserver.Option{httpserver.WithLogger(log)}
	for _, h := range hooks {
		opts = append(opts, httpserver.WithShutdownHook(h))
	}
	srv := httpserver.NewFromConfig(cfg.HTTP, opts...)

	router := newRouter(routerDeps{
		log:      log,
		tokens:   tokens,
		plans:    plans,
		subs:     subs,
		registry: reg,
		limiter:  limiter,
		checks:   store.checks,
		timeout:  cfg.App.ReadinessTimeout,
	})

	return srv.Run(ctx, router)
}

func seedPlans(ctx context.Context, plans catalog.Service, path string, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open plan seed file: %w", err)
	}
	defer f.Close()

	inputs, err := catalog.LoadYAML(f)
	if err != nil {
		return err
	}
	created, err := catalog.Seed(ctx, plans, inputs)
	if err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	log.Info("plan catalog seeded", slog.String("file", path), slog.Int("created", created), slog.Int("total", len(inputs)))
	return nil
}

func runHooks(hooks []func()) {
	for _, h := range hooks {
		h()
	}
}
