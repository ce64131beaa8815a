package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// ReadingService processes incoming site load readings.
type ReadingService struct {
	readings    ports.ReadingRepository
	production  ports.ProductionSiteRepository
	consumption ports.ConsumptionSiteRepository
	publisher   ports.EventPublisher
}

// NewReadingService creates a new ReadingService.
func NewReadingService(
	readings ports.ReadingRepository,
	production ports.ProductionSiteRepository,
	consumption ports.ConsumptionSiteRepository,
	publisher ports.EventPublisher,
) *ReadingService {
	return &ReadingService{
		readings:    readings,
		production:  production,
		consumption: consumption,
		publisher:   publisher,
	}
}

// Record validates a reading, persists it and updates the site's current
// load so map and analytics views reflect the latest measurement.
func (s *ReadingService) Record(ctx context.Context, r *domain.SiteReading) error {
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	if r.LoadMW < 0 {
		return fmt.Errorf("load must not be negative, got %.2f", r.LoadMW)
	}

	switch r.Kind {
	case domain.KindProduction:
		site, err := s.production.GetByID(ctx, r.SiteID)
		if err != nil {
			return fmt.Errorf("production site %d: %w", r.SiteID, err)
		}
		site.CurrentOutputMW = r.LoadMW
		if err := s.production.Update(ctx, site); err != nil {
			return fmt.Errorf("update output: %w", err)
		}
	case domain.KindConsumption:
		site, err := s.consumption.GetByID(ctx, r.SiteID)
		if err != nil {
			return fmt.Errorf("consumption site %d: %w", r.SiteID, err)
		}
		site.CurrentDemandMW = r.LoadMW
		if err := s.consumption.Update(ctx, site); err != nil {
			return fmt.Errorf("update demand: %w", err)
		}
	default:
		return fmt.Errorf("unknown site kind %q", r.Kind)
	}

	if err := s.readings.Insert(ctx, r); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	metrics.ReadingsIngested.WithLabelValues(string(r.Kind)).Inc()

	// Broadcast to live subscribers; delivery failure must not lose the reading.
	if s.publisher != nil {
		_ = s.publisher.PublishReading(ctx, r)
	}

	return nil
}

// History returns the most recent readings for a site, newest first.
func (s *ReadingService) History(ctx context.Context, key domain.EntityKey, limit int) ([]domain.SiteReading, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.readings.LatestForSite(ctx, key, limit)
}
