package ttldict

import (
	"log/slog"
	"time"
)

type options struct {
	now            func() time.Time
	log            *slog.Logger
	metrics        Metrics
	deferCallbacks bool
}

// Option configures a Dict at construction time.
type Option func(*options)

func defaultOptions() options {
	return options{
		now:     time.Now,
		log:     slog.Default(),
		metrics: NopMetrics(),
	}
}

// WithClock replaces time.Now as the source of the current time. The clock
// must never go backwards.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithDeferredCallbacks makes expiration callbacks run after the operation
// that purged them has released the lock, instead of while it is held.
// Callbacks then may call back into the Dict. They still run on the calling
// goroutine, in expiration order.
func WithDeferredCallbacks() Option {
	return func(o *options) {
		o.deferCallbacks = true
	}
}
