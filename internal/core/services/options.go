package services

import (
	"time"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// SettingsProvider supplies the settings in effect. Services read it on
// every request so reloaded thresholds apply without a restart.
type SettingsProvider interface {
	Current() domain.AppSettings
}

// StaticSettings is a SettingsProvider that never changes.
type StaticSettings domain.AppSettings

// Current returns the fixed settings.
func (s StaticSettings) Current() domain.AppSettings {
	return domain.AppSettings(s)
}

// Option configures a service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
