package usecases

import (
	"context"
	"encoding/json"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

const overviewCacheKey = "analytics:overview"

// AnalyticsService computes network-wide statistics.
type AnalyticsService struct {
	production  ports.ProductionSiteRepository
	consumption ports.ConsumptionSiteRepository
	pipelines   ports.PipelineRepository
	cache       ports.CacheService
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	production ports.ProductionSiteRepository,
	consumption ports.ConsumptionSiteRepository,
	pipelines ports.PipelineRepository,
	cache ports.CacheService,
) *AnalyticsService {
	return &AnalyticsService{
		production:  production,
		consumption: consumption,
		pipelines:   pipelines,
		cache:       cache,
	}
}

// Overview aggregates counts, capacity and demand totals, utilization and
// coverage percentages across the whole network.
func (s *AnalyticsService) Overview(ctx context.Context) (*domain.NetworkOverview, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, overviewCacheKey); err == nil {
			var ov domain.NetworkOverview
			if err := json.Unmarshal(data, &ov); err == nil {
				metrics.CacheHits.WithLabelValues("overview").Inc()
				return &ov, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("overview").Inc()
	}

	var (
		prods []domain.ProductionSite
		cons  []domain.ConsumptionSite
		pipes []domain.Pipeline
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prods, err = s.production.List(gctx, ports.ProductionSiteFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		cons, err = s.consumption.List(gctx, ports.ConsumptionSiteFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		pipes, err = s.pipelines.List(gctx, ports.PipelineFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov := &domain.NetworkOverview{
		ProductionSites:  len(prods),
		ConsumptionSites: len(cons),
		Pipelines:        len(pipes),
	}

	for _, p := range prods {
		ov.TotalCapacityMW += p.MaxCapacityMW
		if p.Active {
			ov.ActiveProduction++
			ov.CurrentOutputMW += p.CurrentOutputMW
		}
	}
	for _, c := range cons {
		ov.TotalDemandMW += c.PeakDemandMW
		if c.Connected {
			ov.ConnectedConsumption++
			ov.CurrentDemandMW += c.CurrentDemandMW
		}
	}
	for _, p := range pipes {
		ov.PipelineKM += p.DistanceKM
		if p.Status == domain.PipelineActive {
			ov.ActivePipelines++
		}
	}

	if ov.TotalCapacityMW > 0 {
		ov.UtilizationPercent = round1(ov.CurrentOutputMW / ov.TotalCapacityMW * 100)
	}
	if ov.TotalDemandMW > 0 {
		ov.CoveragePercent = round1(ov.CurrentOutputMW / ov.TotalDemandMW * 100)
	}
	ov.TotalCapacityMW = round1(ov.TotalCapacityMW)
	ov.CurrentOutputMW = round1(ov.CurrentOutputMW)
	ov.TotalDemandMW = round1(ov.TotalDemandMW)
	ov.CurrentDemandMW = round1(ov.CurrentDemandMW)
	ov.PipelineKM = round1(ov.PipelineKM)

	// Overview is cheap to serve stale; 30s keeps dashboards responsive.
	if s.cache != nil {
		if data, err := json.Marshal(ov); err == nil {
			_ = s.cache.Set(ctx, overviewCacheKey, data, 30)
		}
	}

	return ov, nil
}

// ProductionSiteAnalytics reports one production site's utilization and
// the demand currently drawn through its outgoing pipelines.
func (s *AnalyticsService) ProductionSiteAnalytics(ctx context.Context, id int64) (*domain.ProductionAnalytics, error) {
	site, err := s.production.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pipes, err := s.pipelines.List(ctx, ports.PipelineFilter{ProductionSiteID: id})
	if err != nil {
		return nil, err
	}

	a := &domain.ProductionAnalytics{Site: *site, Pipelines: pipes}
	for _, p := range pipes {
		a.ConnectedDemandMW += p.CurrentFlowMW
	}
	a.ConnectedDemandMW = round1(a.ConnectedDemandMW)
	if site.MaxCapacityMW > 0 {
		a.UtilizationPercent = round1(site.CurrentOutputMW / site.MaxCapacityMW * 100)
	}
	return a, nil
}

// ConsumptionSiteAnalytics reports one consumption site's supply coverage
// through its incoming pipelines.
func (s *AnalyticsService) ConsumptionSiteAnalytics(ctx context.Context, id int64) (*domain.ConsumptionAnalytics, error) {
	site, err := s.consumption.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pipes, err := s.pipelines.List(ctx, ports.PipelineFilter{ConsumptionSiteID: id})
	if err != nil {
		return nil, err
	}

	a := &domain.ConsumptionAnalytics{Site: *site, Pipelines: pipes}
	for _, p := range pipes {
		a.SupplyCapacityMW += p.MaxFlowMW
		a.CurrentSupplyMW += p.CurrentFlowMW
	}
	a.SupplyCapacityMW = round1(a.SupplyCapacityMW)
	a.CurrentSupplyMW = round1(a.CurrentSupplyMW)
	if site.PeakDemandMW > 0 {
		a.CoveragePercent = round1(a.SupplyCapacityMW / site.PeakDemandMW * 100)
		a.UtilizationPercent = round1(site.CurrentDemandMW / site.PeakDemandMW * 100)
	}
	return a, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
