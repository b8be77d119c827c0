package driving

import "github.com/custodia-labs/docent-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults applied
	// and API keys resolved from the environment.
	Get() (*domain.AppSettings, error)

	// Set stores a single dot-notation key after validating it.
	Set(key, value string) error

	// Keys returns every supported key in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
