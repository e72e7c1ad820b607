package redis

import "errors"

var (
	ErrDisabled          = errors.New("redis is not configured, set REDIS_URL")
	ErrInvalidURL        = errors.New("invalid redis connection URL")
	ErrNotReady          = errors.New("redis did not answer ping before the connect timeout")
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
