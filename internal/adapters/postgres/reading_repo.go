package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// ReadingRepo implements ports.ReadingRepository with pgx.
type ReadingRepo struct {
	db *DB
}

// NewReadingRepo creates a new ReadingRepo.
func NewReadingRepo(db *DB) *ReadingRepo {
	return &ReadingRepo{db: db}
}

// Insert stores a single reading.
func (r *ReadingRepo) Insert(ctx context.Context, reading *domain.SiteReading) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO site_readings (time, site_kind, site_id, load_mw, supply_temp_c, return_temp_c)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, 0))
	`, reading.Time, reading.Kind, reading.SiteID, reading.LoadMW,
		reading.SupplyTempC, reading.ReturnTempC)
	return err
}

// InsertBatch stores many readings using pgx.Batch.
func (r *ReadingRepo) InsertBatch(ctx context.Context, readings []domain.SiteReading) error {
	batch := &pgx.Batch{}
	for _, reading := range readings {
		batch.Queue(`
			INSERT INTO site_readings (time, site_kind, site_id, load_mw, supply_temp_c, return_temp_c)
			VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, 0))
		`, reading.Time, reading.Kind, reading.SiteID, reading.LoadMW,
			reading.SupplyTempC, reading.ReturnTempC)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range readings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// LatestForSite returns the newest readings for a site, newest first.
func (r *ReadingRepo) LatestForSite(ctx context.Context, key domain.EntityKey, limit int) ([]domain.SiteReading, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT time, site_kind, site_id, load_mw,
		       COALESCE(supply_temp_c, 0), COALESCE(return_temp_c, 0)
		FROM site_readings
		WHERE site_kind = $1 AND site_id = $2
		ORDER BY time DESC
		LIMIT $3
	`, key.Kind, key.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("latest readings: %w", err)
	}
	defer rows.Close()

	var readings []domain.SiteReading
	for rows.Next() {
		var reading domain.SiteReading
		if err := rows.Scan(&reading.Time, &reading.Kind, &reading.SiteID,
			&reading.LoadMW, &reading.SupplyTempC, &reading.ReturnTempC); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
