package driven

import (
	"context"
	"time"
)

// RateLimiter paces outbound calls per named channel.
type RateLimiter interface {
	// Acquire blocks until the channel's minimum interval has elapsed
	// since the previous acquisition, or ctx is done.
	Acquire(ctx context.Context, channel string) error

	// Backoff defers the channel's next slot by at least d, used after an
	// upstream signals throttling.
	Backoff(channel string, d time.Duration)
}
