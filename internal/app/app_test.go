package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/providers/newsapi"
	"github.com/custodia-labs/geocache/internal/providers/openmeteo"
	"github.com/custodia-labs/geocache/internal/providers/openweather"
)

// clearEnv isolates a test from the caller's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENWEATHER_API_KEY", "NEWS_API_KEY", "GEOCACHE_ADDR",
		"GEOCACHE_DATA_DIR", "GEOCACHE_CONFIG_DIR", "GEOCACHE_HTTP_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
}

// failingUpstream answers every request with 500 and counts calls.
func failingUpstream(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))
}

func TestNew_Ephemeral(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()

	a, err := New(Options{ConfigDir: configDir, Ephemeral: true})
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Close()) }()

	assert.Equal(t, filepath.Join(configDir, "config.toml"), a.ConfigPath())
	assert.NotNil(t, a.Weather)
	assert.NotNil(t, a.Places)
	assert.NotNil(t, a.Currency)
	assert.NotNil(t, a.News)
	assert.NotNil(t, a.Cleaner)
	assert.NotNil(t, a.Scheduler)
	assert.Nil(t, a.store)
}

func TestNew_SQLite(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	a, err := New(Options{ConfigDir: t.TempDir(), DataDir: dataDir})
	require.NoError(t, err)

	require.NotNil(t, a.store)
	assert.FileExists(t, filepath.Join(dataDir, "geocache.db"))
	assert.NoError(t, a.Close())
}

func TestNew_DirsFromEnv(t *testing.T) {
	clearEnv(t)
	configDir := t.TempDir()
	dataDir := t.TempDir()
	t.Setenv("GEOCACHE_CONFIG_DIR", configDir)
	t.Setenv("GEOCACHE_DATA_DIR", dataDir)

	a, err := New(Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, filepath.Join(configDir, "config.toml"), a.ConfigPath())
	assert.FileExists(t, filepath.Join(dataDir, "geocache.db"))
}

func TestNew_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOCACHE_HTTP_TIMEOUT", "later")

	_, err := New(Options{ConfigDir: t.TempDir(), Ephemeral: true})

	assert.Error(t, err)
}

func TestNew_CorruptConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "[[[")

	_, err := New(Options{ConfigDir: dir, Ephemeral: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestApp_CurrencyFallbackWhenUpstreamsFail(t *testing.T) {
	clearEnv(t)
	srv, calls := failingUpstream(t)
	dir := t.TempDir()
	writeConfig(t, dir, fmt.Sprintf(`
[providers.frankfurter]
base_url = %q

[providers.erapi]
base_url = %q
`, srv.URL, srv.URL))

	a, err := New(Options{ConfigDir: dir, Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	rate, err := a.Currency.Rate(context.Background(), "JPY", "USD")

	require.NoError(t, err)
	assert.Equal(t, 0.0068, rate.Rate)
	assert.True(t, rate.IsFallback())
	assert.Equal(t, int32(2), calls.Load())

	_, err = a.Currency.Rate(context.Background(), "JPY", "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "cached fallback makes no outbound calls")
}

func TestApp_WeatherUnavailable(t *testing.T) {
	clearEnv(t)
	srv, _ := failingUpstream(t)
	dir := t.TempDir()
	writeConfig(t, dir, fmt.Sprintf("[providers.openmeteo]\nbase_url = %q\n", srv.URL))

	a, err := New(Options{ConfigDir: dir, Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Weather.Resolve(context.Background(), 3.139, 101.6869)

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestApp_Reload(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "[freshness]\nweather = \"5m\"\n")

	a, err := New(Options{ConfigDir: dir, Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, 5*time.Minute, a.Settings.Current().Freshness.Weather)

	writeConfig(t, dir, "[freshness]\nweather = \"2m\"\n\n[ratelimit]\nnominatim = \"2s\"\n")
	require.NoError(t, a.Reload())

	current := a.Settings.Current()
	assert.Equal(t, 2*time.Minute, current.Freshness.Weather)
	assert.Equal(t, 2*time.Second, current.RateLimit.Nominatim)
}

func TestApp_ReloadCorruptKeepsSettings(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "[freshness]\nweather = \"5m\"\n")

	a, err := New(Options{ConfigDir: dir, Ephemeral: true})
	require.NoError(t, err)
	defer a.Close()

	writeConfig(t, dir, "[[[")
	assert.Error(t, a.Reload())
	assert.Equal(t, 5*time.Minute, a.Settings.Current().Freshness.Weather)
}

func TestNewProviders(t *testing.T) {
	t.Run("keyed providers skipped without keys", func(t *testing.T) {
		s := domain.DefaultAppSettings()

		p := NewProviders(s, NewLimiter(s.RateLimit))

		require.Len(t, p.Weather, 1)
		assert.Equal(t, openmeteo.Name, p.Weather[0].Name())
		assert.Len(t, p.Places, 2)
		assert.Len(t, p.Currency, 2)
		assert.Empty(t, p.News)
	})

	t.Run("keyed providers lead their chains", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		s.Providers.OpenWeather.APIKey = "ow"
		s.Providers.NewsAPI.APIKey = "na"

		p := NewProviders(s, NewLimiter(s.RateLimit))

		require.Len(t, p.Weather, 2)
		assert.Equal(t, openweather.Name, p.Weather[0].Name())
		assert.Equal(t, openmeteo.Name, p.Weather[1].Name())
		require.Len(t, p.News, 1)
		assert.Equal(t, newsapi.Name, p.News[0].Name())
	})
}

func TestRateIntervals(t *testing.T) {
	rl := domain.DefaultAppSettings().RateLimit

	intervals := rateIntervals(rl)

	assert.Equal(t, rl.Nominatim, intervals[domain.ChannelNominatim])
	assert.Equal(t, rl.Overpass, intervals[domain.ChannelOverpass])
	assert.Equal(t, rl.NewsAPI, intervals[domain.ChannelNewsAPI])
}
