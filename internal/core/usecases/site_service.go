package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// SiteService handles site-related business logic for both variants and
// doubles as the map core's SiteCatalog.
type SiteService struct {
	production  ports.ProductionSiteRepository
	consumption ports.ConsumptionSiteRepository
	pipelines   ports.PipelineRepository
	cache       ports.CacheService

	// List cache keys vary by filter (consumption keys carry the
	// site-type suffix), so every written key is tracked for invalidate.
	mu       sync.Mutex
	listKeys map[string]struct{}
}

// NewSiteService creates a new SiteService.
func NewSiteService(
	production ports.ProductionSiteRepository,
	consumption ports.ConsumptionSiteRepository,
	pipelines ports.PipelineRepository,
	cache ports.CacheService,
) *SiteService {
	return &SiteService{
		production:  production,
		consumption: consumption,
		pipelines:   pipelines,
		cache:       cache,
		listKeys:    make(map[string]struct{}),
	}
}

// ListProduction returns production sites, optionally active-only.
func (s *SiteService) ListProduction(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
	cacheKey := fmt.Sprintf("sites:production:%t", f.ActiveOnly)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sites []domain.ProductionSite
			if err := json.Unmarshal(data, &sites); err == nil {
				metrics.CacheHits.WithLabelValues("list_production").Inc()
				return sites, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("list_production").Inc()
	}

	sites, err := s.production.List(ctx, f)
	if err != nil {
		return nil, err
	}

	// Cache for 1 minute; sites change on refresh, not per request.
	if s.cache != nil {
		if data, err := json.Marshal(sites); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
			s.remember(cacheKey)
		}
	}

	return sites, nil
}

// ListConsumption returns consumption sites with optional filters.
func (s *SiteService) ListConsumption(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error) {
	cacheKey := fmt.Sprintf("sites:consumption:%t:%s", f.ConnectedOnly, f.SiteType)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sites []domain.ConsumptionSite
			if err := json.Unmarshal(data, &sites); err == nil {
				metrics.CacheHits.WithLabelValues("list_consumption").Inc()
				return sites, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("list_consumption").Inc()
	}

	sites, err := s.consumption.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(sites); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
			s.remember(cacheKey)
		}
	}

	return sites, nil
}

// GetProduction returns a single production site.
func (s *SiteService) GetProduction(ctx context.Context, id int64) (*domain.ProductionSite, error) {
	return s.production.GetByID(ctx, id)
}

// GetConsumption returns a single consumption site.
func (s *SiteService) GetConsumption(ctx context.Context, id int64) (*domain.ConsumptionSite, error) {
	return s.consumption.GetByID(ctx, id)
}

// CreateProduction validates and persists a new production site.
func (s *SiteService) CreateProduction(ctx context.Context, site *domain.ProductionSite) error {
	if site.Name == "" {
		return fmt.Errorf("site name must not be empty")
	}
	if site.MaxCapacityMW <= 0 {
		return fmt.Errorf("max capacity must be positive")
	}
	if err := s.production.Create(ctx, site); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CreateConsumption validates and persists a new consumption site.
func (s *SiteService) CreateConsumption(ctx context.Context, site *domain.ConsumptionSite) error {
	if site.Name == "" {
		return fmt.Errorf("site name must not be empty")
	}
	if site.PeakDemandMW <= 0 {
		return fmt.Errorf("peak demand must be positive")
	}
	if site.PriorityLevel == 0 {
		site.PriorityLevel = 1
	}
	if err := s.consumption.Create(ctx, site); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateProduction persists changed fields of an existing production site.
func (s *SiteService) UpdateProduction(ctx context.Context, site *domain.ProductionSite) error {
	if err := s.production.Update(ctx, site); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateConsumption persists changed fields of an existing consumption site.
func (s *SiteService) UpdateConsumption(ctx context.Context, site *domain.ConsumptionSite) error {
	if err := s.consumption.Update(ctx, site); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteSite removes a site of either variant. Sites with attached
// pipelines cannot be deleted.
func (s *SiteService) DeleteSite(ctx context.Context, key domain.EntityKey) error {
	attached, err := s.pipelines.CountForSite(ctx, key)
	if err != nil {
		return fmt.Errorf("count pipelines: %w", err)
	}
	if attached > 0 {
		return fmt.Errorf("%w: %d pipelines attached to %s", ErrSiteInUse, attached, key)
	}

	switch key.Kind {
	case domain.KindProduction:
		err = s.production.Delete(ctx, key.ID)
	case domain.KindConsumption:
		err = s.consumption.Delete(ctx, key.ID)
	default:
		return fmt.Errorf("unknown site kind %q", key.Kind)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ProductionEntities implements ports.SiteCatalog.
func (s *SiteService) ProductionEntities(ctx context.Context) ([]domain.MapEntity, error) {
	sites, err := s.ListProduction(ctx, ports.ProductionSiteFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.MapEntity, 0, len(sites))
	for i := range sites {
		out = append(out, sites[i].MapEntity())
	}
	return out, nil
}

// ConsumptionEntities implements ports.SiteCatalog.
func (s *SiteService) ConsumptionEntities(ctx context.Context) ([]domain.MapEntity, error) {
	sites, err := s.ListConsumption(ctx, ports.ConsumptionSiteFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.MapEntity, 0, len(sites))
	for i := range sites {
		out = append(out, sites[i].MapEntity())
	}
	return out, nil
}

func (s *SiteService) remember(key string) {
	s.mu.Lock()
	s.listKeys[key] = struct{}{}
	s.mu.Unlock()
}

func (s *SiteService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.listKeys)+1)
	for key := range s.listKeys {
		keys = append(keys, key)
	}
	s.listKeys = make(map[string]struct{})
	s.mu.Unlock()

	keys = append(keys, overviewCacheKey)
	for _, key := range keys {
		_ = s.cache.Delete(ctx, key)
	}
}
