package postgres

import (
	"context"
	"fmt"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// ConfigRepo implements ports.ConfigRepository with pgx.
type ConfigRepo struct {
	db *DB
}

// NewConfigRepo creates a new ConfigRepo.
func NewConfigRepo(db *DB) *ConfigRepo {
	return &ConfigRepo{db: db}
}

// List returns every stored config entry, ordered by key.
func (r *ConfigRepo) List(ctx context.Context) ([]domain.ConfigEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT config_key, config_value, COALESCE(description, ''), updated_at
		FROM system_config
		ORDER BY config_key
	`)
	if err != nil {
		return nil, fmt.Errorf("query config: %w", err)
	}
	defer rows.Close()

	var entries []domain.ConfigEntry
	for rows.Next() {
		var e domain.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.Description, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan config entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert stores or replaces a config entry. A blank description on update
// keeps the stored one.
func (r *ConfigRepo) Upsert(ctx context.Context, entry *domain.ConfigEntry) error {
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO system_config (config_key, config_value, description)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (config_key) DO UPDATE SET
			config_value = EXCLUDED.config_value,
			description  = COALESCE(EXCLUDED.description, system_config.description),
			updated_at   = now()
		RETURNING updated_at
	`, entry.Key, entry.Value, entry.Description)
	return row.Scan(&entry.UpdatedAt)
}
