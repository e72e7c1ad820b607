package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/planmeter/pkg/redis"
)

func TestConfig_Key(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{KeyPrefix: "planmeter"}
	assert.Equal(t, "planmeter:catalog:plans", cfg.Key("catalog", "plans"))
	assert.Equal(t, "planmeter", cfg.Key())

	cfg.KeyPrefix = ""
	assert.Equal(t, "catalog:plans", cfg.Key("catalog", "plans"))
}

func TestConnect_Disabled(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{}
	assert.False(t, cfg.Enabled())

	_, err := redis.Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, redis.ErrDisabled)
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://not-redis"})
	assert.ErrorIs(t, err, redis.ErrInvalidURL)
}
