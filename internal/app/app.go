// Package app wires adapters, providers and services into a running geocache.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/geocache/internal/adapters/driven/config"
	"github.com/custodia-labs/geocache/internal/adapters/driven/config/file"
	"github.com/custodia-labs/geocache/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geocache/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/services"
	"github.com/custodia-labs/geocache/internal/logger"
	"github.com/custodia-labs/geocache/internal/providers/ratelimit"
)

// Options selects where configuration and data live.
type Options struct {
	// ConfigDir holds config.toml. Empty uses GEOCACHE_CONFIG_DIR, then ~/.geocache.
	ConfigDir string

	// DataDir holds the SQLite database. Empty uses GEOCACHE_DATA_DIR, then ~/.geocache/data.
	DataDir string

	// Ephemeral keeps all data in memory.
	Ephemeral bool
}

// App holds the wired services.
type App struct {
	Settings  *services.SettingsService
	Weather   *services.WeatherService
	Places    *services.PlacesService
	Currency  *services.CurrencyService
	News      *services.NewsService
	Cleaner   *services.Cleaner
	Scheduler *services.Scheduler

	configPath string
	limiter    *ratelimit.Limiter
	refresher  *services.Refresher
	store      *sqlite.Store
}

// stores groups the persistence ports.
type stores struct {
	cache     driven.CacheStore
	places    driven.PlaceStore
	news      driven.NewsStore
	scheduler driven.SchedulerStore
}

// New builds an App from opts.
func New(opts Options) (*App, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	if opts.ConfigDir == "" {
		opts.ConfigDir = env.ConfigDir
	}
	if opts.DataDir == "" {
		opts.DataDir = env.DataDir
	}

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, config.EnvOverride())
	settings := settingsService.Current()

	a := &App{
		Settings:   settingsService,
		configPath: configStore.Path(),
		limiter:    NewLimiter(settings.RateLimit),
		refresher:  services.NewRefresher(settings.Refresh),
	}

	st, err := a.openStores(opts)
	if err != nil {
		return nil, err
	}

	providers := NewProviders(settings, a.limiter)

	a.Weather = services.NewWeatherService(providers.Weather, st.cache, a.refresher, settingsService)
	a.Places = services.NewPlacesService(providers.Places, st.places, st.cache, a.refresher, settingsService)
	a.Currency = services.NewCurrencyService(providers.Currency, st.cache, a.refresher, settingsService)
	a.News = services.NewNewsService(providers.News, st.news, st.cache, a.refresher, settingsService)
	a.Cleaner = services.NewCleaner(st.cache, st.places, st.news, settingsService)
	a.Scheduler = services.NewScheduler(settings.Scheduler, st.scheduler, a.Cleaner, a.News)

	logger.Debug("app: config %s, ephemeral=%v", a.configPath, opts.Ephemeral)
	return a, nil
}

func (a *App) openStores(opts Options) (stores, error) {
	if opts.Ephemeral {
		return stores{
			cache:     memory.NewCacheStore(),
			places:    memory.NewPlaceStore(),
			news:      memory.NewNewsStore(),
			scheduler: memory.NewSchedulerStore(),
		}, nil
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return stores{}, fmt.Errorf("opening store: %w", err)
	}
	a.store = store
	logger.Debug("app: database %s", store.Path())

	return stores{
		cache:     store.CacheStore(),
		places:    store.PlaceStore(),
		news:      store.NewsStore(),
		scheduler: store.SchedulerStore(),
	}, nil
}

// ConfigPath returns the config file the App was loaded from.
func (a *App) ConfigPath() string {
	return a.configPath
}

// Reload re-reads the config file and applies new thresholds and rate limits.
// Provider endpoints and keys take effect on the next start.
func (a *App) Reload() error {
	if err := a.Settings.Reload(); err != nil {
		return err
	}
	applyRateLimits(a.limiter, a.Settings.Current().RateLimit)
	return nil
}

// Close waits for background refreshes and closes the database.
func (a *App) Close() error {
	var errs []error
	if a.Scheduler != nil {
		errs = append(errs, a.Scheduler.Stop())
	}
	if a.refresher != nil {
		errs = append(errs, a.refresher.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// NewLimiter creates the shared limiter with one channel per rate-limited upstream.
func NewLimiter(rl domain.RateLimitSettings) *ratelimit.Limiter {
	return ratelimit.New(rateIntervals(rl)).WithDefaultBackoff(rl.DefaultBackoff)
}

func applyRateLimits(l *ratelimit.Limiter, rl domain.RateLimitSettings) {
	for name, interval := range rateIntervals(rl) {
		l.SetInterval(name, interval)
	}
}

func rateIntervals(rl domain.RateLimitSettings) map[string]time.Duration {
	return map[string]time.Duration{
		domain.ChannelNominatim: rl.Nominatim,
		domain.ChannelOverpass:  rl.Overpass,
		domain.ChannelNewsAPI:   rl.NewsAPI,
	}
}
