// Package ports defines the interfaces (driven and driving ports)
// between the pomodoro engine and the infrastructure around it.
package ports

import (
	"context"

	"github.com/xvierd/pomodore/internal/domain"
)

// SettingsRepository persists the settings record.
// This is a driven port (implemented by adapters).
type SettingsRepository interface {
	// Load returns the stored settings. Missing or unparseable fields
	// fall back to their defaults.
	Load(ctx context.Context) (domain.Settings, error)

	// Save replaces the stored settings.
	Save(ctx context.Context, settings domain.Settings) error

	// Values returns the raw key-value record.
	Values(ctx context.Context) (map[string]string, error)
}

// Storage is the combined persistence interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Settings provides access to the settings record.
	Settings() SettingsRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
