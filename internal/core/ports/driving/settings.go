package driving

import "github.com/custodia-labs/geocache/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Reload re-reads the configuration source.
	Reload() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
