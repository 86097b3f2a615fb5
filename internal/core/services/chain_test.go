package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/logger"
)

type intProvider = driven.Provider[string, int]

func constProvider(name string, v int) *mockProvider[string, int] {
	return newMockProvider(name, func(context.Context, string) (int, error) { return v, nil })
}

func TestRunChain_FirstSuccessWins(t *testing.T) {
	first := constProvider("first", 1)
	second := constProvider("second", 2)

	got, name, err := RunChain(context.Background(), []intProvider{first, second}, "q", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, "first", name)
	assert.Equal(t, 0, second.Calls())
}

func TestRunChain_FallsThroughFailures(t *testing.T) {
	broken := failingProvider[string, int]("broken", errors.New("timeout"))
	empty := constProvider("empty", 0)
	good := constProvider("good", 7)

	got, name, err := RunChain(context.Background(), []intProvider{broken, empty, good}, "q",
		func(v int) bool { return v > 0 })

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, "good", name)
	assert.Equal(t, 1, broken.Calls())
	assert.Equal(t, 1, empty.Calls())
}

func TestRunChain_ReportsRejectedCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	rejected := failingProvider[string, int]("openweather",
		fmt.Errorf("status 401: %w", domain.ErrUnauthorized))
	flaky := failingProvider[string, int]("flaky", errors.New("timeout"))
	good := constProvider("open-meteo", 3)

	got, name, err := RunChain(context.Background(), []intProvider{rejected, flaky, good}, "q", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, "open-meteo", name)
	assert.Contains(t, buf.String(), "chain: openweather rejected its credentials")
	assert.NotContains(t, buf.String(), "flaky", "ordinary failures stay at debug level")
}

func TestRunChain_Exhausted(t *testing.T) {
	cause := errors.New("status 500")
	providers := []intProvider{
		failingProvider[string, int]("a", cause),
		constProvider("b", 0),
	}

	_, name, err := RunChain(context.Background(), providers, "q", func(v int) bool { return v > 0 })

	require.Error(t, err)
	assert.Empty(t, name)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, errNoUsableResult)
	assert.Contains(t, err.Error(), "a: status 500")
}

func TestRunChain_NoProviders(t *testing.T) {
	_, _, err := RunChain[string, int](context.Background(), nil, "q", nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestRunChain_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := constProvider("p", 1)

	_, _, err := RunChain(ctx, []intProvider{p}, "q", nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.Calls())
}

type sliceProvider = driven.Provider[string, []string]

func listProvider(name string, items ...string) *mockProvider[string, []string] {
	return newMockProvider(name, func(context.Context, string) ([]string, error) {
		return append([]string(nil), items...), nil
	})
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func TestGather_StopsAtMinResults(t *testing.T) {
	a := listProvider("a", "x", "y")
	b := listProvider("b", "z")
	c := listProvider("c", "w")

	got, err := Gather(context.Background(), []sliceProvider{a, b, c}, "q", 3, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, got)
	assert.Equal(t, 0, c.Calls())
}

func TestGather_MergeAppliedBeforeCount(t *testing.T) {
	a := listProvider("a", "x", "y")
	b := listProvider("b", "x")
	c := listProvider("c", "z")

	got, err := Gather(context.Background(), []sliceProvider{a, b, c}, "q", 3, dedupeStrings)

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, got)
	assert.Equal(t, 1, c.Calls())
}

func TestGather_PartialFailure(t *testing.T) {
	broken := failingProvider[string, []string]("broken", errors.New("boom"))
	ok := listProvider("ok", "x")

	got, err := Gather(context.Background(), []sliceProvider{broken, ok}, "q", 10, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}

func TestGather_SuccessWithNoResults(t *testing.T) {
	got, err := Gather(context.Background(), []sliceProvider{listProvider("none")}, "q", 10, nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGather_AllFail(t *testing.T) {
	providers := []sliceProvider{
		failingProvider[string, []string]("a", errors.New("one")),
		failingProvider[string, []string]("b", errors.New("two")),
	}

	got, err := Gather(context.Background(), providers, "q", 1, nil)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "b: two")
}
