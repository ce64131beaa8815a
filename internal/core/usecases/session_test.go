package usecases_test

import (
	"context"
	"testing"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

func newSessionFixture(surface *fakeSurface) (*usecases.MapSession, *usecases.EntityStore, *mockCatalog) {
	catalog := &mockCatalog{
		productionFn: func(ctx context.Context) ([]domain.MapEntity, error) {
			return []domain.MapEntity{prodEntity(1, "Alpha Plant")}, nil
		},
		consumptionFn: func(ctx context.Context) ([]domain.MapEntity, error) {
			return []domain.MapEntity{consEntity(2, "Beta Hotel")}, nil
		},
	}
	store := usecases.NewEntityStore(catalog)
	session := usecases.NewMapSession(store, surface, testCamera, nil)
	return session, store, catalog
}

func TestMapSession_RefreshReconciles(t *testing.T) {
	surface := newFakeSurface()
	session, store, _ := newSessionFixture(surface)
	defer session.Teardown()

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Registry().Len() != 2 {
		t.Errorf("expected 2 handles after refresh, got %d", session.Registry().Len())
	}
}

func TestMapSession_FilterSurvivesRefresh(t *testing.T) {
	surface := newFakeSurface()
	session, store, catalog := newSessionFixture(surface)
	defer session.Teardown()

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session.ApplyFilter("alpha")

	// A refresh brings in a new non-matching site; it must arrive hidden.
	catalog.mu.Lock()
	catalog.consumptionFn = func(ctx context.Context) ([]domain.MapEntity, error) {
		return []domain.MapEntity{consEntity(2, "Beta Hotel"), consEntity(3, "Gamma Works")}, nil
	}
	catalog.mu.Unlock()

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gamma := domain.EntityKey{Kind: domain.KindConsumption, ID: 3}
	if surface.visible[gamma] {
		t.Error("new handle did not inherit active filter")
	}
	alpha := domain.EntityKey{Kind: domain.KindProduction, ID: 1}
	if !surface.visible[alpha] {
		t.Error("matching handle hidden after refresh")
	}
}

func TestMapSession_SurfaceReadyCatchesUp(t *testing.T) {
	surface := newFakeSurface()
	surface.ready = false
	session, store, _ := newSessionFixture(surface)
	defer session.Teardown()

	// Data arrives before the surface: nothing to render yet.
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Registry().Len() != 0 {
		t.Fatal("reconciled against an unready surface")
	}

	surface.ready = true
	session.HandleSurfaceReady()

	if session.Registry().Len() != 2 {
		t.Errorf("expected 2 handles after readiness, got %d", session.Registry().Len())
	}
	if !surface.extrusions {
		t.Error("3D extrusions not applied on surface ready")
	}
}

func TestMapSession_TeardownDisposesEverything(t *testing.T) {
	surface := newFakeSurface()
	session, store, _ := newSessionFixture(surface)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.HandleMarkerClick(domain.EntityKey{Kind: domain.KindProduction, ID: 1})

	session.Teardown()

	if session.Registry().Len() != 0 {
		t.Error("handles survived teardown")
	}
	if len(surface.markers) != 0 {
		t.Error("surface markers survived teardown")
	}
	if surface.popupOwner != nil {
		t.Error("popup survived teardown")
	}

	// A late refresh result must be ignored, not reconciled.
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Registry().Len() != 0 {
		t.Error("torn-down session reconciled a pending refresh")
	}
}

func TestMapSession_PopupFlow(t *testing.T) {
	surface := newFakeSurface()
	session, store, _ := newSessionFixture(surface)
	defer session.Teardown()

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := domain.EntityKey{Kind: domain.KindProduction, ID: 1}
	b := domain.EntityKey{Kind: domain.KindConsumption, ID: 2}

	session.HandleMarkerClick(a)
	session.HandleMarkerClick(b)

	st, open := session.Popups().Current()
	if !open || st.Owner != b {
		t.Errorf("popup owner = %v (open=%v), want %s", st.Owner, open, b)
	}

	session.ClosePopup()
	if _, open := session.Popups().Current(); open {
		t.Error("popup still open after ClosePopup")
	}
}

func TestMapSession_ViewModeToggle(t *testing.T) {
	surface := newFakeSurface()
	session, _, _ := newSessionFixture(surface)
	defer session.Teardown()

	if session.ViewMode() != domain.ViewMode3D {
		t.Fatalf("initial mode = %s, want 3d", session.ViewMode())
	}
	if got := session.ToggleViewMode(); got != domain.ViewMode2D {
		t.Errorf("toggle = %s, want 2d", got)
	}
	session.SetViewMode(domain.ViewMode2D) // no-op
	if surface.easeCalls != 1 {
		t.Errorf("expected 1 camera call, got %d", surface.easeCalls)
	}
}
