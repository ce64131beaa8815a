package usecases

import (
	"context"
	"fmt"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/geospatial"
)

// PipelineService handles pipeline business logic.
type PipelineService struct {
	pipelines   ports.PipelineRepository
	production  ports.ProductionSiteRepository
	consumption ports.ConsumptionSiteRepository
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(
	pipelines ports.PipelineRepository,
	production ports.ProductionSiteRepository,
	consumption ports.ConsumptionSiteRepository,
) *PipelineService {
	return &PipelineService{
		pipelines:   pipelines,
		production:  production,
		consumption: consumption,
	}
}

// List returns pipelines matching the filter.
func (s *PipelineService) List(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error) {
	return s.pipelines.List(ctx, f)
}

// Get returns a single pipeline.
func (s *PipelineService) Get(ctx context.Context, id int64) (*domain.Pipeline, error) {
	return s.pipelines.GetByID(ctx, id)
}

// Create validates endpoints, computes the distance when the caller left it
// zero, and persists the pipeline. Both endpoints must exist and only a
// single pipeline may link a given pair of sites.
func (s *PipelineService) Create(ctx context.Context, p *domain.Pipeline) error {
	prod, err := s.production.GetByID(ctx, p.ProductionSiteID)
	if err != nil {
		return fmt.Errorf("production site %d: %w", p.ProductionSiteID, err)
	}
	cons, err := s.consumption.GetByID(ctx, p.ConsumptionSiteID)
	if err != nil {
		return fmt.Errorf("consumption site %d: %w", p.ConsumptionSiteID, err)
	}

	exists, err := s.pipelines.Exists(ctx, p.ProductionSiteID, p.ConsumptionSiteID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: production %d, consumption %d",
			ErrPipelineExists, p.ProductionSiteID, p.ConsumptionSiteID)
	}

	if p.DistanceKM <= 0 {
		meters := geospatial.Haversine(
			prod.Location.Lat, prod.Location.Lng,
			cons.Location.Lat, cons.Location.Lng,
		)
		p.DistanceKM = meters / 1000
	}
	if p.Status == "" {
		p.Status = domain.PipelineActive
	}

	return s.pipelines.Create(ctx, p)
}

// Delete removes a pipeline.
func (s *PipelineService) Delete(ctx context.Context, id int64) error {
	return s.pipelines.Delete(ctx, id)
}
