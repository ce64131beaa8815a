package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
)

// ProductionRepo implements ports.ProductionSiteRepository with pgx.
type ProductionRepo struct {
	db *DB
}

// NewProductionRepo creates a new ProductionRepo.
func NewProductionRepo(db *DB) *ProductionRepo {
	return &ProductionRepo{db: db}
}

const productionColumns = `
	id, name, lat, lng, COALESCE(address, ''),
	max_capacity_mw, current_output_mw, efficiency_percent,
	COALESCE(fuel_type, ''), active, commissioned_at, last_maintenance,
	COALESCE(description, ''), created_at`

func scanProductionSite(row pgx.Row) (*domain.ProductionSite, error) {
	var s domain.ProductionSite
	err := row.Scan(
		&s.ID, &s.Name, &s.Location.Lat, &s.Location.Lng, &s.Address,
		&s.MaxCapacityMW, &s.CurrentOutputMW, &s.EfficiencyPercent,
		&s.FuelType, &s.Active, &s.CommissionedAt, &s.LastMaintenance,
		&s.Description, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns production sites ordered by name.
func (r *ProductionRepo) List(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
	query := `SELECT` + productionColumns + ` FROM production_sites`
	if f.ActiveOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list production sites: %w", err)
	}
	defer rows.Close()

	var sites []domain.ProductionSite
	for rows.Next() {
		s, err := scanProductionSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *s)
	}
	return sites, rows.Err()
}

// GetByID returns a production site by ID.
func (r *ProductionRepo) GetByID(ctx context.Context, id int64) (*domain.ProductionSite, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT`+productionColumns+` FROM production_sites WHERE id = $1`, id)
	return scanProductionSite(row)
}

// Create inserts a new production site and fills in its ID.
func (r *ProductionRepo) Create(ctx context.Context, s *domain.ProductionSite) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO production_sites
			(name, lat, lng, address, max_capacity_mw, current_output_mw,
			 efficiency_percent, fuel_type, active, commissioned_at,
			 last_maintenance, description)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9, $10, $11, NULLIF($12, ''))
		RETURNING id, created_at
	`, s.Name, s.Location.Lat, s.Location.Lng, s.Address,
		s.MaxCapacityMW, s.CurrentOutputMW, s.EfficiencyPercent,
		s.FuelType, s.Active, s.CommissionedAt, s.LastMaintenance, s.Description,
	).Scan(&s.ID, &s.CreatedAt)
}

// Update rewrites all mutable columns of an existing site.
func (r *ProductionRepo) Update(ctx context.Context, s *domain.ProductionSite) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE production_sites
		SET name = $2, lat = $3, lng = $4, address = NULLIF($5, ''),
		    max_capacity_mw = $6, current_output_mw = $7, efficiency_percent = $8,
		    fuel_type = NULLIF($9, ''), active = $10, commissioned_at = $11,
		    last_maintenance = $12, description = NULLIF($13, '')
		WHERE id = $1
	`, s.ID, s.Name, s.Location.Lat, s.Location.Lng, s.Address,
		s.MaxCapacityMW, s.CurrentOutputMW, s.EfficiencyPercent,
		s.FuelType, s.Active, s.CommissionedAt, s.LastMaintenance, s.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a production site.
func (r *ProductionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM production_sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
