package entities

import (
	"go.uber.org/dig"
)

// SettingsLoader resolves the settings for an explicit --config path, or
// searches the default locations when the path is empty.
type SettingsLoader func(explicitPath string) (*Settings, error)

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(func() SettingsLoader { return ResolveSettings })
}
