package syncer

import (
	"log/slog"
	"time"

	"github.com/shopease/storefront/internal/feed"
	"github.com/shopease/storefront/internal/scheduler"
)

const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultWriteTimeout = 5 * time.Second
)

// Subscriber hands out change feed subscriptions. *feed.Hub satisfies it.
type Subscriber interface {
	Subscribe(table feed.Table, userID string) *feed.Subscription
}

type options struct {
	debounce      time.Duration
	writeTimeout  time.Duration
	logger        *slog.Logger
	debouncerOpts []scheduler.Option
}

type Option func(*options)

func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebouncerOptions is passed through to the cart write debouncer.
func WithDebouncerOptions(opts ...scheduler.Option) Option {
	return func(o *options) {
		o.debouncerOpts = append(o.debouncerOpts, opts...)
	}
}

func buildOptions(opts []Option) options {
	o := options{
		debounce:     DefaultDebounce,
		writeTimeout: DefaultWriteTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
