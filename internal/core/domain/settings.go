package domain

import "time"

// RetentionSettings controls how long persisted data is kept.
type RetentionSettings struct {
	// News is the age after which stored articles are deleted.
	News time.Duration

	// Places is the age after which places not rediscovered are deleted.
	Places time.Duration
}

// RateLimitSettings holds the minimum interval between calls per channel.
// Zero disables limiting for that channel.
type RateLimitSettings struct {
	Nominatim time.Duration
	Overpass  time.Duration
	NewsAPI   time.Duration

	// DefaultBackoff is used after an HTTP 429 without Retry-After.
	DefaultBackoff time.Duration
}

// Channels returns the configured intervals keyed by channel name.
func (r RateLimitSettings) Channels() map[string]time.Duration {
	return map[string]time.Duration{
		ChannelNominatim: r.Nominatim,
		ChannelOverpass:  r.Overpass,
		ChannelNewsAPI:   r.NewsAPI,
	}
}

// Rate limiter channels.
const (
	ChannelNominatim = "nominatim"
	ChannelOverpass  = "overpass"
	ChannelNewsAPI   = "newsapi"
)

// ProviderSettings configures a single upstream.
type ProviderSettings struct {
	// BaseURL overrides the public endpoint.
	BaseURL string

	// APIKey authenticates with the upstream.
	APIKey string
}

// IsConfigured returns true if the provider has credentials.
func (p ProviderSettings) IsConfigured() bool {
	return p.APIKey != ""
}

// ProvidersSettings groups the upstream configuration.
type ProvidersSettings struct {
	OpenWeather ProviderSettings
	OpenMeteo   ProviderSettings
	Frankfurter ProviderSettings
	ERAPI       ProviderSettings
	Overpass    ProviderSettings
	Nominatim   ProviderSettings
	NewsAPI     ProviderSettings

	// UserAgent identifies this service to upstreams.
	UserAgent string

	// Timeout bounds a single upstream request.
	Timeout time.Duration

	// PlacesTimeout bounds place searches, which are slower.
	PlacesTimeout time.Duration
}

// PlacesSettings tunes place discovery.
type PlacesSettings struct {
	// MinResults stops the provider chain once this many places are found.
	MinResults int

	// Limit caps results returned to callers.
	Limit int
}

// ServerSettings configures the HTTP adapter.
type ServerSettings struct {
	Addr string
}

// RefreshSettings bounds background and shared fetches.
type RefreshSettings struct {
	// Workers caps concurrent background refreshes.
	Workers int

	// FetchTimeout bounds a detached fetch.
	FetchTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Freshness FreshnessSettings
	Retention RetentionSettings
	RateLimit RateLimitSettings
	Providers ProvidersSettings
	Places    PlacesSettings
	Server    ServerSettings
	Refresh   RefreshSettings
	Scheduler SchedulerConfig
}

// DefaultUserAgent identifies geocache to upstream APIs.
const DefaultUserAgent = "geocache/1.0 (+https://github.com/custodia-labs/geocache)"

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; keyed providers are skipped until configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Freshness: DefaultFreshnessSettings(),
		Retention: RetentionSettings{
			News:   30 * 24 * time.Hour,
			Places: 30 * 24 * time.Hour,
		},
		RateLimit: RateLimitSettings{
			Nominatim:      1200 * time.Millisecond,
			Overpass:       1200 * time.Millisecond,
			NewsAPI:        150 * time.Millisecond,
			DefaultBackoff: 60 * time.Second,
		},
		Providers: ProvidersSettings{
			UserAgent:     DefaultUserAgent,
			Timeout:       10 * time.Second,
			PlacesTimeout: 30 * time.Second,
		},
		Places: PlacesSettings{
			MinResults: 10,
			Limit:      DefaultPlacesLimit,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
		},
		Refresh: RefreshSettings{
			Workers:      4,
			FetchTimeout: 45 * time.Second,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}
