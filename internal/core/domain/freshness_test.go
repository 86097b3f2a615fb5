package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFreshnessPolicy_Evaluate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := FreshnessPolicy{MaxAge: 10 * time.Minute}

	tests := []struct {
		name      string
		fetchedAt time.Time
		want      Freshness
	}{
		{"never fetched", time.Time{}, FreshnessEmpty},
		{"just fetched", now, FreshnessFresh},
		{"under threshold", now.Add(-9 * time.Minute), FreshnessFresh},
		{"at threshold", now.Add(-10 * time.Minute), FreshnessStale},
		{"well past threshold", now.Add(-3 * time.Hour), FreshnessStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Evaluate(tt.fetchedAt, now))
		})
	}
}

func TestFreshnessSettings_CacheTTL(t *testing.T) {
	s := DefaultFreshnessSettings()
	assert.Equal(t, 60*time.Minute, s.CacheTTL(s.Weather))

	s.StaleTTLFactor = 0
	assert.Equal(t, s.Weather, s.CacheTTL(s.Weather))
}

func TestDefaultFreshnessSettings(t *testing.T) {
	s := DefaultFreshnessSettings()

	assert.Equal(t, 10*time.Minute, s.Weather)
	assert.Equal(t, time.Hour, s.Currency)
	assert.Equal(t, 24*time.Hour, s.Places)
	assert.Equal(t, 30*time.Minute, s.News)
}
