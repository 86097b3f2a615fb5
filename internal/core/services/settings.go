package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
	"github.com/custodia-labs/geocache/internal/core/ports/driven"
	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyFreshnessWeather  = "freshness.weather"
	keyFreshnessCurrency = "freshness.currency"
	keyFreshnessPlaces   = "freshness.places"
	keyFreshnessNews     = "freshness.news"
	keyStaleTTLFactor    = "freshness.stale_ttl_factor"
	keyFallbackTTL       = "freshness.fallback_ttl"

	keyRetentionNews   = "retention.news"
	keyRetentionPlaces = "retention.places"

	keyRateNominatim = "ratelimit.nominatim"
	keyRateOverpass  = "ratelimit.overpass"
	keyRateNewsAPI   = "ratelimit.newsapi"
	keyRateBackoff   = "ratelimit.default_backoff"

	keyUserAgent     = "providers.user_agent"
	keyHTTPTimeout   = "http.timeout"
	keyPlacesTimeout = "http.places_timeout"

	keyPlacesMinResults = "places.min_results"
	keyPlacesLimit      = "places.limit"

	keyServerAddr = "server.addr"

	keyRefreshWorkers = "refresh.workers"
	keyFetchTimeout   = "refresh.fetch_timeout"

	keySchedulerEnabled = "scheduler.enabled"
)

// Provider names used under the "providers." config prefix.
const (
	providerOpenWeather = "openweather"
	providerOpenMeteo   = "openmeteo"
	providerFrankfurter = "frankfurter"
	providerERAPI       = "erapi"
	providerOverpass    = "overpass"
	providerNominatim   = "nominatim"
	providerNewsAPI     = "newsapi"
)

// schedulerTaskKeys maps task IDs to their TOML table names.
var schedulerTaskKeys = map[string]string{
	domain.TaskIDRetentionCleanup: "retention_cleanup",
	domain.TaskIDNewsRefresh:      "news_refresh",
}

// SettingsOverride adjusts settings after they are read from the config
// store, e.g. to apply environment variables.
type SettingsOverride func(*domain.AppSettings) error

// SettingsService manages application settings.
// It composes defaults, config store values and overrides, in that order,
// and keeps the result for cheap per-request reads.
type SettingsService struct {
	configStore driven.ConfigStore
	overrides   []SettingsOverride

	mu      sync.RWMutex
	current domain.AppSettings
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, overrides ...SettingsOverride) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		overrides:   overrides,
	}
	settings, err := s.Get()
	if err != nil {
		logger.Warn("settings: using defaults: %v", err)
		defaults := s.GetDefaults()
		settings = &defaults
	}
	s.current = *settings
	return s
}

// Get reads settings from the config store and applies overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Freshness: domain.FreshnessSettings{
			Weather:        s.getDuration(keyFreshnessWeather, d.Freshness.Weather),
			Currency:       s.getDuration(keyFreshnessCurrency, d.Freshness.Currency),
			Places:         s.getDuration(keyFreshnessPlaces, d.Freshness.Places),
			News:           s.getDuration(keyFreshnessNews, d.Freshness.News),
			StaleTTLFactor: s.getInt(keyStaleTTLFactor, d.Freshness.StaleTTLFactor),
			FallbackTTL:    s.getDuration(keyFallbackTTL, d.Freshness.FallbackTTL),
		},
		Retention: domain.RetentionSettings{
			News:   s.getDuration(keyRetentionNews, d.Retention.News),
			Places: s.getDuration(keyRetentionPlaces, d.Retention.Places),
		},
		RateLimit: domain.RateLimitSettings{
			Nominatim:      s.getInterval(keyRateNominatim, d.RateLimit.Nominatim),
			Overpass:       s.getInterval(keyRateOverpass, d.RateLimit.Overpass),
			NewsAPI:        s.getInterval(keyRateNewsAPI, d.RateLimit.NewsAPI),
			DefaultBackoff: s.getDuration(keyRateBackoff, d.RateLimit.DefaultBackoff),
		},
		Providers: domain.ProvidersSettings{
			OpenWeather:   s.getProviderSettings(providerOpenWeather),
			OpenMeteo:     s.getProviderSettings(providerOpenMeteo),
			Frankfurter:   s.getProviderSettings(providerFrankfurter),
			ERAPI:         s.getProviderSettings(providerERAPI),
			Overpass:      s.getProviderSettings(providerOverpass),
			Nominatim:     s.getProviderSettings(providerNominatim),
			NewsAPI:       s.getProviderSettings(providerNewsAPI),
			UserAgent:     s.getString(keyUserAgent, d.Providers.UserAgent),
			Timeout:       s.getDuration(keyHTTPTimeout, d.Providers.Timeout),
			PlacesTimeout: s.getDuration(keyPlacesTimeout, d.Providers.PlacesTimeout),
		},
		Places: domain.PlacesSettings{
			MinResults: s.getInt(keyPlacesMinResults, d.Places.MinResults),
			Limit:      s.getInt(keyPlacesLimit, d.Places.Limit),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
		Refresh: domain.RefreshSettings{
			Workers:      s.getInt(keyRefreshWorkers, d.Refresh.Workers),
			FetchTimeout: s.getDuration(keyFetchTimeout, d.Refresh.FetchTimeout),
		},
		Scheduler: s.GetSchedulerConfig(),
	}

	if settings.Places.Limit > domain.DefaultPlacesLimit {
		settings.Places.Limit = domain.DefaultPlacesLimit
	}

	for _, override := range s.overrides {
		if err := override(settings); err != nil {
			return nil, fmt.Errorf("applying settings override: %w", err)
		}
	}
	return settings, nil
}

// Current returns the settings in effect. It never touches the config store.
func (s *SettingsService) Current() domain.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save persists application settings and makes them current.
// Empty base URLs and API keys are left unset.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}

	values := map[string]any{
		keyFreshnessWeather:  settings.Freshness.Weather.String(),
		keyFreshnessCurrency: settings.Freshness.Currency.String(),
		keyFreshnessPlaces:   settings.Freshness.Places.String(),
		keyFreshnessNews:     settings.Freshness.News.String(),
		keyStaleTTLFactor:    settings.Freshness.StaleTTLFactor,
		keyFallbackTTL:       settings.Freshness.FallbackTTL.String(),
		keyRetentionNews:     settings.Retention.News.String(),
		keyRetentionPlaces:   settings.Retention.Places.String(),
		keyRateNominatim:     settings.RateLimit.Nominatim.String(),
		keyRateOverpass:      settings.RateLimit.Overpass.String(),
		keyRateNewsAPI:       settings.RateLimit.NewsAPI.String(),
		keyRateBackoff:       settings.RateLimit.DefaultBackoff.String(),
		keyUserAgent:         settings.Providers.UserAgent,
		keyHTTPTimeout:       settings.Providers.Timeout.String(),
		keyPlacesTimeout:     settings.Providers.PlacesTimeout.String(),
		keyPlacesMinResults:  settings.Places.MinResults,
		keyPlacesLimit:       settings.Places.Limit,
		keyServerAddr:        settings.Server.Addr,
		keyRefreshWorkers:    settings.Refresh.Workers,
		keyFetchTimeout:      settings.Refresh.FetchTimeout.String(),
		keySchedulerEnabled:  settings.Scheduler.Enabled,
	}

	providers := map[string]domain.ProviderSettings{
		providerOpenWeather: settings.Providers.OpenWeather,
		providerOpenMeteo:   settings.Providers.OpenMeteo,
		providerFrankfurter: settings.Providers.Frankfurter,
		providerERAPI:       settings.Providers.ERAPI,
		providerOverpass:    settings.Providers.Overpass,
		providerNominatim:   settings.Providers.Nominatim,
		providerNewsAPI:     settings.Providers.NewsAPI,
	}
	for name, p := range providers {
		if p.BaseURL != "" {
			values["providers."+name+".base_url"] = p.BaseURL
		}
		if p.APIKey != "" {
			values["providers."+name+".api_key"] = p.APIKey
		}
	}

	for taskID, key := range schedulerTaskKeys {
		cfg := settings.Scheduler.GetTaskConfig(taskID)
		values["scheduler."+key+".enabled"] = cfg.Enabled
		values["scheduler."+key+".interval"] = cfg.Interval.String()
	}

	for key, val := range values {
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return s.refresh()
}

// Reload re-reads the config store and replaces the current settings.
func (s *SettingsService) Reload() error {
	if err := s.configStore.Load(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return s.refresh()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	for taskID, configKey := range schedulerTaskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		if d := s.configStore.GetDuration(prefix + "interval"); d > 0 {
			taskCfg.Interval = d
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

func (s *SettingsService) refresh() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = *settings
	s.mu.Unlock()
	logger.Debug("settings: reloaded from %s", s.configStore.Path())
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getInterval is like getDuration but an explicit zero disables limiting.
func (s *SettingsService) getInterval(key string, defaultVal time.Duration) time.Duration {
	if val := s.configStore.GetDuration(key); val > 0 {
		return val
	}
	raw, _ := s.configStore.Get(key)
	switch v := raw.(type) {
	case string:
		if v == "0" || v == "0s" {
			return 0
		}
	case int:
		if v == 0 {
			return 0
		}
	case int64:
		if v == 0 {
			return 0
		}
	}
	return defaultVal
}

func (s *SettingsService) getProviderSettings(name string) domain.ProviderSettings {
	prefix := "providers." + name + "."
	return domain.ProviderSettings{
		BaseURL: s.configStore.GetString(prefix + "base_url"),
		APIKey:  s.configStore.GetString(prefix + "api_key"),
	}
}
