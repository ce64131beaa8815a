package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
)

// PipelineRepo implements ports.PipelineRepository with pgx.
type PipelineRepo struct {
	db *DB
}

// NewPipelineRepo creates a new PipelineRepo.
func NewPipelineRepo(db *DB) *PipelineRepo {
	return &PipelineRepo{db: db}
}

const pipelineColumns = `
	id, production_site_id, consumption_site_id, distance_km,
	max_flow_mw, current_flow_mw, supply_temp_c, return_temp_c, status, created_at`

func scanPipeline(row pgx.Row) (*domain.Pipeline, error) {
	var p domain.Pipeline
	err := row.Scan(
		&p.ID, &p.ProductionSiteID, &p.ConsumptionSiteID, &p.DistanceKM,
		&p.MaxFlowMW, &p.CurrentFlowMW, &p.SupplyTempC, &p.ReturnTempC,
		&p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns pipelines matching the filter.
func (r *PipelineRepo) List(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error) {
	query := `SELECT` + pipelineColumns + ` FROM pipelines WHERE true`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.ProductionSiteID != 0 {
		args = append(args, f.ProductionSiteID)
		query += fmt.Sprintf(` AND production_site_id = $%d`, len(args))
	}
	if f.ConsumptionSiteID != 0 {
		args = append(args, f.ConsumptionSiteID)
		query += fmt.Sprintf(` AND consumption_site_id = $%d`, len(args))
	}
	query += ` ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipes []domain.Pipeline
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		pipes = append(pipes, *p)
	}
	return pipes, rows.Err()
}

// GetByID returns a pipeline by ID.
func (r *PipelineRepo) GetByID(ctx context.Context, id int64) (*domain.Pipeline, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT`+pipelineColumns+` FROM pipelines WHERE id = $1`, id)
	return scanPipeline(row)
}

// Create inserts a new pipeline and fills in its ID.
func (r *PipelineRepo) Create(ctx context.Context, p *domain.Pipeline) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO pipelines
			(production_site_id, consumption_site_id, distance_km, max_flow_mw,
			 current_flow_mw, supply_temp_c, return_temp_c, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.ProductionSiteID, p.ConsumptionSiteID, p.DistanceKM, p.MaxFlowMW,
		p.CurrentFlowMW, p.SupplyTempC, p.ReturnTempC, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
}

// Delete removes a pipeline.
func (r *PipelineRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM pipelines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Exists reports whether a pipeline already links the two sites.
func (r *PipelineRepo) Exists(ctx context.Context, productionID, consumptionID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pipelines
			WHERE production_site_id = $1 AND consumption_site_id = $2
		)
	`, productionID, consumptionID).Scan(&exists)
	return exists, err
}

// CountForSite returns how many pipelines touch the given site.
func (r *PipelineRepo) CountForSite(ctx context.Context, key domain.EntityKey) (int, error) {
	var column string
	switch key.Kind {
	case domain.KindProduction:
		column = "production_site_id"
	case domain.KindConsumption:
		column = "consumption_site_id"
	default:
		return 0, fmt.Errorf("unknown site kind %q", key.Kind)
	}

	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM pipelines WHERE `+column+` = $1`, key.ID,
	).Scan(&count)
	return count, err
}
