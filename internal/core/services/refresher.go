package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/logger"
)

// FetchFunc loads fresh data for one scope and writes it to the cache.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Refresher decides between cached data and upstream fetches.
//
// Concurrent fetches for the same scope share one execution, whether they
// come from requests that found nothing cached or from background refreshes
// of stale data. Shared fetches run detached from the caller's context so a
// disconnecting client never aborts cache population.
type Refresher struct {
	group        singleflight.Group
	exec         errgroup.Group
	fetchTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	closed   bool
}

// NewRefresher creates a refresher with at most workers background
// refreshes running at once.
func NewRefresher(cfg domain.RefreshSettings) *Refresher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = domain.DefaultAppSettings().Refresh.FetchTimeout
	}

	r := &Refresher{
		fetchTimeout: timeout,
		inflight:     make(map[string]struct{}),
	}
	r.exec.SetLimit(workers)
	return r
}

// Resolve applies the cache-aside policy for one scope.
//
//   - Fresh: cached is returned and fetch is not called.
//   - Stale: cached is returned and fetch is scheduled in the background.
//   - Empty: fetch runs now, shared with any concurrent caller of the scope.
func Resolve[T any](
	ctx context.Context,
	r *Refresher,
	scope string,
	state domain.Freshness,
	cached T,
	fetch FetchFunc[T],
) (T, error) {
	shared := func(ctx context.Context) (any, error) { return fetch(ctx) }

	switch state {
	case domain.FreshnessFresh:
		logger.Debug("refresh: %s fresh", scope)
		return cached, nil
	case domain.FreshnessStale:
		logger.Debug("refresh: %s stale, refreshing in background", scope)
		r.Background(scope, shared)
		return cached, nil
	}

	logger.Debug("refresh: %s empty, fetching", scope)
	v, err := r.Shared(ctx, scope, shared)
	if err != nil {
		var zero T
		return zero, err
	}
	result, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("refresh: scope %s produced %T", scope, v)
	}
	return result, nil
}

// Shared runs fn once per scope among concurrent callers. The caller waits
// for the result unless ctx ends first; fn itself keeps running on a
// detached context bounded by the fetch timeout.
func (r *Refresher) Shared(ctx context.Context, scope string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(scope, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(detached, r.fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Debug("refresh: %s result shared", scope)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Background schedules fn for scope on the worker pool. It returns false if
// a refresh for scope is already queued or running, the pool is full, or
// the refresher is closed. Failures are logged only.
func (r *Refresher) Background(scope string, fn func(context.Context) (any, error)) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	if _, busy := r.inflight[scope]; busy {
		r.mu.Unlock()
		return false
	}
	r.inflight[scope] = struct{}{}
	r.mu.Unlock()

	started := r.exec.TryGo(func() error {
		defer r.done(scope)
		if _, err := r.Shared(context.Background(), scope, fn); err != nil {
			logger.Warn("refresh: background refresh of %s failed: %v", scope, err)
		}
		return nil
	})
	if !started {
		r.done(scope)
		logger.Debug("refresh: worker pool full, skipping %s", scope)
	}
	return started
}

// InFlight reports whether a background refresh for scope is pending.
func (r *Refresher) InFlight(scope string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[scope]
	return ok
}

// Close stops accepting background work and waits for running refreshes.
func (r *Refresher) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.exec.Wait()
}

func (r *Refresher) done(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, scope)
}
