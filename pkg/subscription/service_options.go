package subscription

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBillingPeriod    = 30 * 24 * time.Hour
	DefaultOperationTimeout = 5 * time.Second
	DefaultTopPlansLimit    = 5
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithObserver(o Observer) ServiceOption {
	return func(s *service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithBillingPeriod sets the distance between StartDate and EndDate of new subscriptions.
func WithBillingPeriod(d time.Duration) ServiceOption {
	return func(s *service) {
		if d > 0 {
			s.period = d
		}
	}
}

// WithOperationTimeout bounds every service call, store round trips included.
func WithOperationTimeout(d time.Duration) ServiceOption {
	return func(s *service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithIDGenerator overrides uuid.New for subscription ids.
func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.newID = fn
		}
	}
}
