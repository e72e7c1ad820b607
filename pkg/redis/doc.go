// Package redis connects to Redis with retries and exposes a readiness probe.
//
// Redis is optional for planmeter: it backs the plan catalog read cache and is
// skipped entirely when REDIS_URL is empty.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		...
//		cache := catalog.NewRedisCache(client, cfg.Key("catalog", "plans"), time.Minute)
//	}
//
// Connection failures are reported as ErrNotReady joined with the last
// driver error.
package redis
