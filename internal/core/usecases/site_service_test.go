package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

// --- Mock repositories ---

type mockProductionRepo struct {
	listFn    func(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.ProductionSite, error)
	createFn  func(ctx context.Context, site *domain.ProductionSite) error
	updateFn  func(ctx context.Context, site *domain.ProductionSite) error
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *mockProductionRepo) List(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

func (m *mockProductionRepo) GetByID(ctx context.Context, id int64) (*domain.ProductionSite, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockProductionRepo) Create(ctx context.Context, site *domain.ProductionSite) error {
	if m.createFn != nil {
		return m.createFn(ctx, site)
	}
	return nil
}

func (m *mockProductionRepo) Update(ctx context.Context, site *domain.ProductionSite) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, site)
	}
	return nil
}

func (m *mockProductionRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockConsumptionRepo struct {
	listFn    func(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.ConsumptionSite, error)
	createFn  func(ctx context.Context, site *domain.ConsumptionSite) error
	updateFn  func(ctx context.Context, site *domain.ConsumptionSite) error
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *mockConsumptionRepo) List(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

func (m *mockConsumptionRepo) GetByID(ctx context.Context, id int64) (*domain.ConsumptionSite, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockConsumptionRepo) Create(ctx context.Context, site *domain.ConsumptionSite) error {
	if m.createFn != nil {
		return m.createFn(ctx, site)
	}
	return nil
}

func (m *mockConsumptionRepo) Update(ctx context.Context, site *domain.ConsumptionSite) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, site)
	}
	return nil
}

func (m *mockConsumptionRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockPipelineRepo struct {
	listFn         func(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error)
	getByIDFn      func(ctx context.Context, id int64) (*domain.Pipeline, error)
	createFn       func(ctx context.Context, p *domain.Pipeline) error
	deleteFn       func(ctx context.Context, id int64) error
	existsFn       func(ctx context.Context, productionID, consumptionID int64) (bool, error)
	countForSiteFn func(ctx context.Context, key domain.EntityKey) (int, error)
}

func (m *mockPipelineRepo) List(ctx context.Context, f ports.PipelineFilter) ([]domain.Pipeline, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

func (m *mockPipelineRepo) GetByID(ctx context.Context, id int64) (*domain.Pipeline, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockPipelineRepo) Create(ctx context.Context, p *domain.Pipeline) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPipelineRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPipelineRepo) Exists(ctx context.Context, productionID, consumptionID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, productionID, consumptionID)
	}
	return false, nil
}

func (m *mockPipelineRepo) CountForSite(ctx context.Context, key domain.EntityKey) (int, error) {
	if m.countForSiteFn != nil {
		return m.countForSiteFn(ctx, key)
	}
	return 0, nil
}

// mockCache is an in-memory CacheService.
type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Tests ---

func TestSiteService_ListProduction_CachesResult(t *testing.T) {
	calls := 0
	repo := &mockProductionRepo{
		listFn: func(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
			calls++
			return []domain.ProductionSite{
				{ID: 1, Name: "Recology Plant", MaxCapacityMW: 45},
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewSiteService(repo, &mockConsumptionRepo{}, &mockPipelineRepo{}, cache)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		sites, err := svc.ListProduction(ctx, ports.ProductionSiteFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sites) != 1 || sites[0].Name != "Recology Plant" {
			t.Fatalf("unexpected sites: %+v", sites)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repo call with warm cache, got %d", calls)
	}
}

func TestSiteService_CreateProduction_Validates(t *testing.T) {
	svc := usecases.NewSiteService(&mockProductionRepo{}, &mockConsumptionRepo{}, &mockPipelineRepo{}, nil)

	err := svc.CreateProduction(context.Background(), &domain.ProductionSite{Name: "", MaxCapacityMW: 10})
	if err == nil {
		t.Fatal("expected error for empty name")
	}

	err = svc.CreateProduction(context.Background(), &domain.ProductionSite{Name: "Plant", MaxCapacityMW: 0})
	if err == nil {
		t.Fatal("expected error for zero capacity")
	}
}

func TestSiteService_CreateConsumption_DefaultsPriority(t *testing.T) {
	var created *domain.ConsumptionSite
	repo := &mockConsumptionRepo{
		createFn: func(ctx context.Context, site *domain.ConsumptionSite) error {
			created = site
			return nil
		},
	}
	svc := usecases.NewSiteService(&mockProductionRepo{}, repo, &mockPipelineRepo{}, nil)

	err := svc.CreateConsumption(context.Background(), &domain.ConsumptionSite{
		Name: "Mission Pool", PeakDemandMW: 2.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.PriorityLevel != 1 {
		t.Errorf("expected priority defaulted to 1, got %+v", created)
	}
}

func TestSiteService_DeleteSite_BlockedByPipelines(t *testing.T) {
	pipelines := &mockPipelineRepo{
		countForSiteFn: func(ctx context.Context, key domain.EntityKey) (int, error) {
			return 2, nil
		},
	}
	deleted := false
	prod := &mockProductionRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	svc := usecases.NewSiteService(prod, &mockConsumptionRepo{}, pipelines, nil)

	err := svc.DeleteSite(context.Background(), domain.EntityKey{Kind: domain.KindProduction, ID: 7})
	if !errors.Is(err, usecases.ErrSiteInUse) {
		t.Fatalf("expected ErrSiteInUse, got %v", err)
	}
	if deleted {
		t.Error("site must not be deleted while pipelines are attached")
	}
}

func TestSiteService_DeleteSite_InvalidatesCache(t *testing.T) {
	cache := newMockCache()
	cache.data["sites:production:false"] = []byte(`[]`)
	svc := usecases.NewSiteService(&mockProductionRepo{}, &mockConsumptionRepo{}, &mockPipelineRepo{}, cache)

	err := svc.DeleteSite(context.Background(), domain.EntityKey{Kind: domain.KindProduction, ID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.data["sites:production:false"]; ok {
		t.Error("expected production list cache to be invalidated")
	}
}

func TestSiteService_CatalogFlattensEntities(t *testing.T) {
	prod := &mockProductionRepo{
		listFn: func(ctx context.Context, f ports.ProductionSiteFilter) ([]domain.ProductionSite, error) {
			return []domain.ProductionSite{
				{ID: 1, Name: "Plant", Location: domain.GeoPoint{Lat: 37.7, Lng: -122.4}, Active: true},
			}, nil
		},
	}
	cons := &mockConsumptionRepo{
		listFn: func(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error) {
			return []domain.ConsumptionSite{
				{ID: 1, Name: "Pool", Location: domain.GeoPoint{Lat: 37.75, Lng: -122.43}, Connected: false},
			}, nil
		},
	}
	svc := usecases.NewSiteService(prod, cons, &mockPipelineRepo{}, nil)

	pe, err := svc.ProductionEntities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pe) != 1 || pe[0].Key.Kind != domain.KindProduction || !pe[0].StatusOK {
		t.Fatalf("unexpected production entities: %+v", pe)
	}

	ce, err := svc.ConsumptionEntities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ce) != 1 || ce[0].Key.Kind != domain.KindConsumption || ce[0].StatusOK {
		t.Fatalf("unexpected consumption entities: %+v", ce)
	}
}

func TestSiteService_InvalidateCoversFilteredLists(t *testing.T) {
	calls := 0
	cons := &mockConsumptionRepo{
		listFn: func(ctx context.Context, f ports.ConsumptionSiteFilter) ([]domain.ConsumptionSite, error) {
			calls++
			return []domain.ConsumptionSite{
				{ID: 1, Name: "Marriott Downtown Hotel", SiteType: "Hotel", PeakDemandMW: 8.5},
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewSiteService(&mockProductionRepo{}, cons, &mockPipelineRepo{}, cache)
	ctx := context.Background()

	filter := ports.ConsumptionSiteFilter{ConnectedOnly: true, SiteType: "Hotel"}
	for i := 0; i < 2; i++ {
		if _, err := svc.ListConsumption(ctx, filter); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 repo call with warm cache, got %d", calls)
	}

	// A write must evict the filtered list entry, not just the unfiltered one.
	if err := svc.CreateConsumption(ctx, &domain.ConsumptionSite{Name: "New Site", PeakDemandMW: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ListConsumption(ctx, filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected repo re-read after write, got %d calls", calls)
	}
}
