package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/planmeter/pkg/catalog"
	"github.com/dmitrymomot/planmeter/pkg/httpserver"
	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/mongo"
	"github.com/dmitrymomot/planmeter/pkg/pg"
	"github.com/dmitrymomot/planmeter/pkg/storage/mongostore"
	"github.com/dmitrymomot/planmeter/pkg/storage/pgstore"
	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

// backend is the persistence selected by STORAGE_DRIVER.
type backend struct {
	plans  catalog.Repository
	subs   subscription.Store
	checks map[string]httpserver.Check
	close  func()
}

func openBackend(ctx context.Context, cfg config, log *slog.Logger) (*backend, error) {
	switch cfg.App.StorageDriver {
	case driverMongo:
		return openMongo(ctx, cfg.Mongo)
	case driverPostgres:
		return openPostgres(ctx, cfg.PG, log)
	case driverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return &backend{
			plans:  catalog.NewMemoryRepository(),
			subs:   subscription.NewMemoryStore(),
			checks: map[string]httpserver.Check{},
			close:  func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.App.StorageDriver)
	}
}

func openMongo(ctx context.Context, cfg mongo.Config) (*backend, error) {
	db, err := mongo.ConnectDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := db.Client()
	closeFn := func() { _ = client.Disconnect(context.Background()) }

	plans := mongostore.NewPlanRepository(db)
	subs := mongostore.NewSubscriptionStore(db)
	if err := plans.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, err
	}
	if err := subs.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, err
	}

	return &backend{
		plans:  plans,
		subs:   subs,
		checks: map[string]httpserver.Check{"mongo": mongo.Healthcheck(client)},
		close:  closeFn,
	}, nil
}

func openPostgres(ctx context.Context, cfg pg.Config, log *slog.Logger) (*backend, error) {
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pgstore.Migrate(ctx, pool, cfg, log.With(logger.Component("migrations"))); err != nil {
		pool.Close()
		return nil, err
	}

	return &backend{
		plans:  pgstore.NewPlanRepository(pool),
		subs:   pgstore.NewSubscriptionStore(pool),
		checks: map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)},
		close:  pool.Close,
	}, nil
}
