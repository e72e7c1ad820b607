package main

import (
	"time"

	"github.com/dmitrymomot/planmeter/pkg/httpserver"
	"github.com/dmitrymomot/planmeter/pkg/jwt"
	"github.com/dmitrymomot/planmeter/pkg/logger"
	"github.com/dmitrymomot/planmeter/pkg/mongo"
	"github.com/dmitrymomot/planmeter/pkg/pg"
	"github.com/dmitrymomot/planmeter/pkg/ratelimiter"
	"github.com/dmitrymomot/planmeter/pkg/redis"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	driverMongo    = "mongo"
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

type appConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	Service          string        `env:"SERVICE_NAME" envDefault:"planmeter"`
	StorageDriver    string        `env:"STORAGE_DRIVER" envDefault:"mongo"`
	SeedFile         string        `env:"PLANS_SEED_FILE"`
	PlanCacheTTL     time.Duration `env:"PLANS_CACHE_TTL" envDefault:"5m"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"5s"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
	StartupTimeout   time.Duration `env:"STARTUP_TIMEOUT" envDefault:"30s"`
}

type config struct {
	App   appConfig
	Log   logger.Config
	HTTP  httpserver.Config
	JWT   jwt.Config
	Mongo mongo.Config
	PG    pg.Config
	Redis redis.Config
	Rate  ratelimiter.Config
}
