package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
)

// ConsumptionRepo implements ports.ConsumptionSiteRepository with pgx.
type ConsumptionRepo struct {
	db *DB
}

// NewConsumptionRepo creates a new ConsumptionRepo.
func NewConsumptionRepo(db *DB) *ConsumptionRepo {
	return &ConsumptionRepo{db: db}
}

const consumptionColumns = `
	id, name, lat, lng, COALESCE(address, ''), COALESCE(site_type, ''),
	peak_demand_mw, current_demand_mw, COALESCE(annual_consumption_mwh, 0),
	connected, connected_at, priority_level, COALESCE(description, ''), created_at`

func scanConsumptionSite(row pgx.Row) (*domain.ConsumptionSite, error) {
	var s domain.ConsumptionSite
	err := row.Scan(
		&s.ID, &s.Name, &s.Location.Lat, &s.Location.Lng, &s.Address, &s.SiteType,
		&s.PeakDemandMW, &s.CurrentDemandMW, &s.AnnualConsumptionMWh,
		&s.Connected, &s.ConnectedAt, &s.PriorityLevel, &s.Description, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns consumption sites ordered by name.
func (r *ConsumptionRepo) List(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error) {
	query := `SELECT` + consumptionColumns + ` FROM consumption_sites WHERE true`
	args := []any{}
	if f.ConnectedOnly {
		query += ` AND connected`
	}
	if f.SiteType != "" {
		args = append(args, f.SiteType)
		query += fmt.Sprintf(` AND site_type = $%d`, len(args))
	}
	query += ` ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consumption sites: %w", err)
	}
	defer rows.Close()

	var sites []domain.ConsumptionSite
	for rows.Next() {
		s, err := scanConsumptionSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *s)
	}
	return sites, rows.Err()
}

// GetByID returns a consumption site by ID.
func (r *ConsumptionRepo) GetByID(ctx context.Context, id int64) (*domain.ConsumptionSite, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT`+consumptionColumns+` FROM consumption_sites WHERE id = $1`, id)
	return scanConsumptionSite(row)
}

// Create inserts a new consumption site and fills in its ID.
func (r *ConsumptionRepo) Create(ctx context.Context, s *domain.ConsumptionSite) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO consumption_sites
			(name, lat, lng, address, site_type, peak_demand_mw, current_demand_mw,
			 annual_consumption_mwh, connected, connected_at, priority_level, description)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, 0), $9, $10, $11, NULLIF($12, ''))
		RETURNING id, created_at
	`, s.Name, s.Location.Lat, s.Location.Lng, s.Address, s.SiteType,
		s.PeakDemandMW, s.CurrentDemandMW, s.AnnualConsumptionMWh,
		s.Connected, s.ConnectedAt, s.PriorityLevel, s.Description,
	).Scan(&s.ID, &s.CreatedAt)
}

// Update rewrites all mutable columns of an existing site.
func (r *ConsumptionRepo) Update(ctx context.Context, s *domain.ConsumptionSite) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE consumption_sites
		SET name = $2, lat = $3, lng = $4, address = NULLIF($5, ''),
		    site_type = NULLIF($6, ''), peak_demand_mw = $7, current_demand_mw = $8,
		    annual_consumption_mwh = NULLIF($9, 0), connected = $10,
		    connected_at = $11, priority_level = $12, description = NULLIF($13, '')
		WHERE id = $1
	`, s.ID, s.Name, s.Location.Lat, s.Location.Lng, s.Address, s.SiteType,
		s.PeakDemandMW, s.CurrentDemandMW, s.AnnualConsumptionMWh,
		s.Connected, s.ConnectedAt, s.PriorityLevel, s.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a consumption site.
func (r *ConsumptionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM consumption_sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
