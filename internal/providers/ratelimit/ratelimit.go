// Package ratelimit paces outbound calls per named upstream channel.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/geocache/internal/core/ports/driven"
)

// Ensure Limiter implements the interface.
var _ driven.RateLimiter = (*Limiter)(nil)

// DefaultBackoff is applied after a 429 that carries no Retry-After.
const DefaultBackoff = 60 * time.Second

// channel is one upstream's token bucket plus its reactive backoff.
type channel struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// Limiter holds one token bucket per channel. Each bucket has burst 1 and
// refills every interval, so consecutive acquisitions are at least one
// interval apart. Channels without a configured interval are unlimited.
type Limiter struct {
	mu             sync.Mutex
	channels       map[string]*channel
	defaultBackoff time.Duration
}

// New creates a limiter with the given per-channel minimum intervals.
// A zero interval disables limiting for that channel.
func New(intervals map[string]time.Duration) *Limiter {
	l := &Limiter{
		channels:       make(map[string]*channel, len(intervals)),
		defaultBackoff: DefaultBackoff,
	}
	for name, interval := range intervals {
		l.channels[name] = newChannel(interval)
	}
	return l
}

// WithDefaultBackoff overrides the backoff used when none is supplied.
func (l *Limiter) WithDefaultBackoff(d time.Duration) *Limiter {
	if d > 0 {
		l.defaultBackoff = d
	}
	return l
}

func newChannel(interval time.Duration) *channel {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &channel{limiter: rate.NewLimiter(limit, 1)}
}

// SetInterval changes a channel's minimum interval, creating it if needed.
func (l *Limiter) SetInterval(name string, interval time.Duration) {
	ch := l.channel(name)
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	ch.limiter.SetLimit(limit)
}

func (l *Limiter) channel(name string) *channel {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.channels[name]
	if !ok {
		ch = newChannel(0)
		l.channels[name] = ch
	}
	return ch
}

// Acquire blocks until a call on the channel is permitted.
// It first honours any backoff set by Backoff, then the token bucket.
func (l *Limiter) Acquire(ctx context.Context, name string) error {
	ch := l.channel(name)

	ch.mu.Lock()
	retryAt := ch.retryAt
	ch.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return ch.limiter.Wait(ctx)
}

// Backoff defers the channel's next call by d. A non-positive d uses the
// default backoff. An earlier deadline never shortens a later one.
func (l *Limiter) Backoff(name string, d time.Duration) {
	if d <= 0 {
		d = l.defaultBackoff
	}
	ch := l.channel(name)

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if at := time.Now().Add(d); at.After(ch.retryAt) {
		ch.retryAt = at
	}
}
