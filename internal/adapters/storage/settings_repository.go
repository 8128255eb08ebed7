package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xvierd/pomodore/internal/domain"
	"github.com/xvierd/pomodore/internal/ports"
)

// settingsRepository stores settings as one row per key.
type settingsRepository struct {
	db *sql.DB
}

func newSettingsRepository(db *sql.DB) ports.SettingsRepository {
	return &settingsRepository{db: db}
}

// Values returns the raw key-value record.
func (r *settingsRepository) Values(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return values, nil
}

// Load returns the stored settings with per-field default fallback.
func (r *settingsRepository) Load(ctx context.Context) (domain.Settings, error) {
	values, err := r.Values(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.SettingsFromMap(values), nil
}

// Save replaces every settings key in one transaction.
func (r *settingsRepository) Save(ctx context.Context, settings domain.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	values := settings.ToMap()
	for _, key := range domain.SettingsKeys {
		if _, err := tx.ExecContext(ctx, query, key, values[key]); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
