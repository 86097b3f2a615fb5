package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/logger"
)

// errNoUsableResult marks a provider that answered without usable data.
var errNoUsableResult = errors.New("no usable result")

// RunChain calls providers in priority order and returns the first result
// accepted by usable, together with the provider name. A provider error or
// an unusable result moves on to the next provider. When every provider
// fails the error wraps domain.ErrUpstreamUnavailable and each provider error.
func RunChain[Q, R any](
	ctx context.Context,
	providers []driven.Provider[Q, R],
	q Q,
	usable func(R) bool,
) (R, string, error) {
	var zero R
	errs := []error{domain.ErrUpstreamUnavailable}

	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := p.Fetch(ctx, q)
		if err != nil {
			logProviderError("chain", p.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if usable != nil && !usable(result) {
			logger.Debug("chain: %s returned nothing usable", p.Name())
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), errNoUsableResult))
			continue
		}
		return result, p.Name(), nil
	}

	return zero, "", errors.Join(errs...)
}

// Gather calls providers in priority order and concatenates their results
// until at least minResults are collected. merge, when set, is applied to
// the running total after each provider (e.g. to drop duplicates) before
// the count is checked. Gather fails only when every provider errored.
func Gather[Q, T any](
	ctx context.Context,
	providers []driven.Provider[Q, []T],
	q Q,
	minResults int,
	merge func([]T) []T,
) ([]T, error) {
	var all []T
	errs := []error{domain.ErrUpstreamUnavailable}
	succeeded := 0

	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		results, err := p.Fetch(ctx, q)
		if err != nil {
			logProviderError("gather", p.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		succeeded++
		logger.Debug("gather: %s returned %d results", p.Name(), len(results))

		all = append(all, results...)
		if merge != nil {
			all = merge(all)
		}
		if len(all) >= minResults {
			break
		}
	}

	if succeeded == 0 {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

// logProviderError reports rejected credentials even without --verbose.
func logProviderError(stage, provider string, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		logger.Error("%s: %s rejected its credentials, check the API key: %v", stage, provider, err)
		return
	}
	logger.Debug("%s: %s failed: %v", stage, provider, err)
}
