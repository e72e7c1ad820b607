package redis

import "time"

// Config describes the Redis connection. An empty ConnectionURL disables Redis;
// callers check Enabled before connecting.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                               // e.g. "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`     // connection attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`    // pause between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`  // upper bound for the whole Connect call
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"planmeter"` // namespace for every key written by the app
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}

// Key joins parts onto the configured prefix with ':'.
func (c Config) Key(parts ...string) string {
	key := c.KeyPrefix
	for _, p := range parts {
		if key == "" {
			key = p
			continue
		}
		key += ":" + p
	}
	return key
}
