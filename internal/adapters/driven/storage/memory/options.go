package memory

import "time"

// Option configures an in-memory store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
