package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

// --- Mock SiteCatalog ---

type mockCatalog struct {
	mu            sync.Mutex
	productionFn  func(ctx context.Context) ([]domain.MapEntity, error)
	consumptionFn func(ctx context.Context) ([]domain.MapEntity, error)
}

func (m *mockCatalog) ProductionEntities(ctx context.Context) ([]domain.MapEntity, error) {
	m.mu.Lock()
	fn := m.productionFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *mockCatalog) ConsumptionEntities(ctx context.Context) ([]domain.MapEntity, error) {
	m.mu.Lock()
	fn := m.consumptionFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

// --- Tests ---

func TestEntityStore_RefreshJoinsBothFetches(t *testing.T) {
	catalog := &mockCatalog{
		productionFn: func(ctx context.Context) ([]domain.MapEntity, error) {
			return []domain.MapEntity{prodEntity(1, "Plant A")}, nil
		},
		consumptionFn: func(ctx context.Context) ([]domain.MapEntity, error) {
			return []domain.MapEntity{consEntity(2, "Site B"), consEntity(3, "Site C")}, nil
		},
	}

	store := usecases.NewEntityStore(catalog)
	if store.State() != usecases.StateLoading {
		t.Fatalf("initial state = %s, want loading", store.State())
	}

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, ok := store.Snapshot()
	if !ok {
		t.Fatal("snapshot not available after successful refresh")
	}
	if len(snap.Production) != 1 || len(snap.Consumption) != 2 {
		t.Errorf("snapshot sizes = %d/%d, want 1/2", len(snap.Production), len(snap.Consumption))
	}
	if got := len(snap.Entities()); got != 3 {
		t.Errorf("Entities() = %d items, want 3", got)
	}
}

func TestEntityStore_PartialFailureSuppressesSnapshot(t *testing.T) {
	catalog := &mockCatalog{
		productionFn: func(ctx context.Context) ([]domain.MapEntity, error) {
			return []domain.MapEntity{prodEntity(1, "Plant A")}, nil
		},
		consumptionFn: func(ctx context.Context) ([]domain.MapEntity, error) {
			return nil, fmt.Errorf("upstream unavailable")
		},
	}

	store := usecases.NewEntityStore(catalog)
	notified := 0
	store.Subscribe(func(usecases.Snapshot) { notified++ })

	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if store.State() != usecases.StateFailed {
		t.Errorf("state = %s, want failed", store.State())
	}
	if _, ok := store.Snapshot(); ok {
		t.Error("snapshot exposed despite partial failure")
	}
	if notified != 0 {
		t.Error("subscribers notified despite failed refresh")
	}
}

func TestEntityStore_FailureKeepsPreviousSnapshot(t *testing.T) {
	failing := false
	catalog := &mockCatalog{}
	catalog.productionFn = func(ctx context.Context) ([]domain.MapEntity, error) {
		if failing {
			return nil, fmt.Errorf("boom")
		}
		return []domain.MapEntity{prodEntity(1, "Plant A")}, nil
	}

	store := usecases.NewEntityStore(catalog)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failing = true
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	// The failed refresh must not have clobbered the data; a subsequent
	// success exposes it again.
	failing = false
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, ok := store.Snapshot()
	if !ok || len(snap.Production) != 1 {
		t.Error("store did not recover after a failed refresh")
	}
}

func TestEntityStore_SubscribeAndCancel(t *testing.T) {
	catalog := &mockCatalog{}
	store := usecases.NewEntityStore(catalog)

	calls := 0
	cancel := store.Subscribe(func(usecases.Snapshot) { calls++ })

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	cancel()
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("cancelled subscriber still notified (%d calls)", calls)
	}
}
