package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

func TestAnalyticsService_Overview(t *testing.T) {
	prod := &mockProductionRepo{
		listFn: func(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
			return []domain.ProductionSite{
				{ID: 1, MaxCapacityMW: 50, CurrentOutputMW: 30, Active: true},
				{ID: 2, MaxCapacityMW: 50, CurrentOutputMW: 40, Active: false},
			}, nil
		},
	}
	cons := &mockConsumptionRepo{
		listFn: func(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error) {
			return []domain.ConsumptionSite{
				{ID: 1, PeakDemandMW: 40, CurrentDemandMW: 20, Connected: true},
				{ID: 2, PeakDemandMW: 20, CurrentDemandMW: 10, Connected: false},
			}, nil
		},
	}
	pipes := &mockPipelineRepo{
		listFn: func(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error) {
			return []domain.Pipeline{
				{ID: 1, DistanceKM: 2.5, Status: domain.PipelineActive},
				{ID: 2, DistanceKM: 1.5, Status: domain.PipelinePlanned},
			}, nil
		},
	}

	svc := usecases.NewAnalyticsService(prod, cons, pipes, nil)
	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ov.ProductionSites != 2 || ov.ActiveProduction != 1 {
		t.Errorf("production counts: %+v", ov)
	}
	if ov.ConsumptionSites != 2 || ov.ConnectedConsumption != 1 {
		t.Errorf("consumption counts: %+v", ov)
	}
	if ov.Pipelines != 2 || ov.ActivePipelines != 1 {
		t.Errorf("pipeline counts: %+v", ov)
	}
	// Inactive output and disconnected demand are excluded from current totals.
	if ov.CurrentOutputMW != 30 {
		t.Errorf("expected current output 30, got %.1f", ov.CurrentOutputMW)
	}
	if ov.CurrentDemandMW != 20 {
		t.Errorf("expected current demand 20, got %.1f", ov.CurrentDemandMW)
	}
	if ov.TotalCapacityMW != 100 || ov.TotalDemandMW != 60 {
		t.Errorf("totals: %+v", ov)
	}
	if ov.PipelineKM != 4 {
		t.Errorf("expected 4 pipeline km, got %.1f", ov.PipelineKM)
	}
	if ov.UtilizationPercent != 30 {
		t.Errorf("expected 30%% utilization, got %.1f", ov.UtilizationPercent)
	}
	if ov.CoveragePercent != 50 {
		t.Errorf("expected 50%% coverage, got %.1f", ov.CoveragePercent)
	}
}

func TestAnalyticsService_Overview_EmptyNetwork(t *testing.T) {
	svc := usecases.NewAnalyticsService(&mockProductionRepo{}, &mockConsumptionRepo{}, &mockPipelineRepo{}, nil)
	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.UtilizationPercent != 0 || ov.CoveragePercent != 0 {
		t.Errorf("expected zero percentages on an empty network, got %+v", ov)
	}
}

func TestAnalyticsService_Overview_RepoError(t *testing.T) {
	prod := &mockProductionRepo{
		listFn: func(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
			return nil, errors.New("database offline")
		},
	}
	svc := usecases.NewAnalyticsService(prod, &mockConsumptionRepo{}, &mockPipelineRepo{}, nil)
	if _, err := svc.Overview(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestAnalyticsService_Overview_Cached(t *testing.T) {
	calls := 0
	prod := &mockProductionRepo{
		listFn: func(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
			calls++
			return nil, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewAnalyticsService(prod, &mockConsumptionRepo{}, &mockPipelineRepo{}, cache)

	for i := 0; i < 3; i++ {
		if _, err := svc.Overview(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repo call with warm cache, got %d", calls)
	}
}

func TestAnalyticsService_ProductionSiteAnalytics(t *testing.T) {
	prod := &mockProductionRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.ProductionSite, error) {
			return &domain.ProductionSite{ID: id, Name: "Fortress Green", MaxCapacityMW: 40, CurrentOutputMW: 30}, nil
		},
	}
	pipes := &mockPipelineRepo{
		listFn: func(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error) {
			if f.ProductionSiteID != 3 {
				t.Errorf("expected filter on production site 3, got %+v", f)
			}
			return []domain.Pipeline{
				{ID: 1, ProductionSiteID: 3, ConsumptionSiteID: 1, CurrentFlowMW: 6.2},
				{ID: 2, ProductionSiteID: 3, ConsumptionSiteID: 2, CurrentFlowMW: 8.9},
			}, nil
		},
	}

	svc := usecases.NewAnalyticsService(prod, &mockConsumptionRepo{}, pipes, nil)
	a, err := svc.ProductionSiteAnalytics(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Site.Name != "Fortress Green" {
		t.Errorf("unexpected site: %+v", a.Site)
	}
	if a.UtilizationPercent != 75 {
		t.Errorf("expected 75%% utilization, got %.1f", a.UtilizationPercent)
	}
	if a.ConnectedDemandMW != 15.1 {
		t.Errorf("expected 15.1 MW connected demand, got %.1f", a.ConnectedDemandMW)
	}
	if len(a.Pipelines) != 2 {
		t.Errorf("expected 2 pipelines, got %d", len(a.Pipelines))
	}
}

func TestAnalyticsService_ConsumptionSiteAnalytics(t *testing.T) {
	cons := &mockConsumptionRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.ConsumptionSite, error) {
			return &domain.ConsumptionSite{ID: id, Name: "Mission Bay Hospital", PeakDemandMW: 20, CurrentDemandMW: 15}, nil
		},
	}
	pipes := &mockPipelineRepo{
		listFn: func(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error) {
			if f.ConsumptionSiteID != 4 {
				t.Errorf("expected filter on consumption site 4, got %+v", f)
			}
			return []domain.Pipeline{
				{ID: 1, ProductionSiteID: 1, ConsumptionSiteID: 4, MaxFlowMW: 10, CurrentFlowMW: 7},
				{ID: 2, ProductionSiteID: 2, ConsumptionSiteID: 4, MaxFlowMW: 15, CurrentFlowMW: 8},
			}, nil
		},
	}

	svc := usecases.NewAnalyticsService(&mockProductionRepo{}, cons, pipes, nil)
	a, err := svc.ConsumptionSiteAnalytics(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SupplyCapacityMW != 25 || a.CurrentSupplyMW != 15 {
		t.Errorf("supply: %+v", a)
	}
	if a.CoveragePercent != 125 {
		t.Errorf("expected 125%% coverage, got %.1f", a.CoveragePercent)
	}
	if a.UtilizationPercent != 75 {
		t.Errorf("expected 75%% utilization, got %.1f", a.UtilizationPercent)
	}
}

func TestAnalyticsService_ProductionSiteAnalytics_UnknownSite(t *testing.T) {
	prod := &mockProductionRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.ProductionSite, error) {
			return nil, errors.New("no rows in result set")
		},
	}
	svc := usecases.NewAnalyticsService(prod, &mockConsumptionRepo{}, &mockPipelineRepo{}, nil)
	if _, err := svc.ProductionSiteAnalytics(context.Background(), 99); err == nil {
		t.Fatal("expected error for unknown site")
	}
}
