package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 30*24*time.Hour, s.Retention.News)
	assert.Equal(t, 1200*time.Millisecond, s.RateLimit.Nominatim)
	assert.Equal(t, 150*time.Millisecond, s.RateLimit.NewsAPI)
	assert.Equal(t, DefaultUserAgent, s.Providers.UserAgent)
	assert.Equal(t, 10, s.Places.MinResults)
	assert.Equal(t, DefaultPlacesLimit, s.Places.Limit)
	assert.True(t, s.Scheduler.Enabled)
	assert.False(t, s.Providers.OpenWeather.IsConfigured())
}

func TestRateLimitSettings_Channels(t *testing.T) {
	r := RateLimitSettings{Nominatim: time.Second, NewsAPI: 0}
	ch := r.Channels()

	assert.Equal(t, time.Second, ch[ChannelNominatim])
	assert.Equal(t, time.Duration(0), ch[ChannelNewsAPI])
	assert.Contains(t, ch, ChannelOverpass)
}

func TestProviderSettings_IsConfigured(t *testing.T) {
	assert.True(t, ProviderSettings{APIKey: "k"}.IsConfigured())
	assert.False(t, ProviderSettings{BaseURL: "http://x"}.IsConfigured())
}
