package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"shala/internal/database"
	"shala/internal/models"
)

const settingsKey = "business"

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Snapshot loads the current business settings as an immutable value. Callers
// pass the snapshot down so one request sees one consistent version. Defaults
// apply until an admin has written a row.
func (r *SettingsRepository) Snapshot(ctx context.Context) (*models.Settings, error) {
	var raw []byte
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT value, version FROM settings WHERE key = $1`, settingsKey).Scan(&raw, &version)
	if database.IsNoRows(err) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return nil, database.MapError(err)
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal(raw, settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings row: %w", err)
	}
	settings.Version = version
	return settings, nil
}

// Update upserts the settings row and bumps its version.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, version, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = $2, version = settings.version + 1, updated_at = NOW()`,
		settingsKey, raw)
	return database.MapError(err)
}
