package usecases_test

import (
	"testing"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

func newRegistry(surface *fakeSurface) (*usecases.MarkerRegistry, *usecases.PopupEngine) {
	reg := usecases.NewMarkerRegistry(surface, usecases.DefaultRenderContent)
	pop := usecases.NewPopupEngine(surface, reg, usecases.DefaultRenderContent)
	reg.AttachPopups(pop)
	return reg, pop
}

func TestMarkerRegistry_ReconcileCreatesAndRemoves(t *testing.T) {
	surface := newFakeSurface()
	reg, _ := newRegistry(surface)

	e1 := prodEntity(1, "Brannan Street Plant")
	e2 := consEntity(2, "Mission Bay Hotel")

	reg.Reconcile([]domain.MapEntity{e1, e2})
	if reg.Len() != 2 {
		t.Fatalf("expected 2 handles, got %d", reg.Len())
	}
	if len(surface.markers) != 2 {
		t.Fatalf("expected 2 surface markers, got %d", len(surface.markers))
	}

	reg.Reconcile(nil)
	if reg.Len() != 0 {
		t.Errorf("expected 0 handles after empty reconcile, got %d", reg.Len())
	}
	if len(surface.removeList) != 2 {
		t.Errorf("expected 2 removals, got %d", len(surface.removeList))
	}
}

func TestMarkerRegistry_ReconcileIdempotent(t *testing.T) {
	surface := newFakeSurface()
	reg, _ := newRegistry(surface)

	entities := []domain.MapEntity{prodEntity(1, "Plant A"), consEntity(2, "Site B")}

	reg.Reconcile(entities)
	h1, _ := reg.Handle(entities[0].Key)

	reg.Reconcile(entities)

	if surface.addCalls != 2 {
		t.Errorf("expected 2 marker attachments total, got %d", surface.addCalls)
	}
	if len(surface.removeList) != 0 {
		t.Errorf("identical reconcile removed markers: %v", surface.removeList)
	}

	h2, ok := reg.Handle(entities[0].Key)
	if !ok || h1 != h2 {
		t.Error("surviving handle was re-created instead of kept")
	}
}

func TestMarkerRegistry_RefreshKeepsSurvivors(t *testing.T) {
	surface := newFakeSurface()
	reg, _ := newRegistry(surface)

	p1 := prodEntity(1, "Plant One")
	c2 := consEntity(2, "Hotel Two")
	reg.Reconcile([]domain.MapEntity{p1, c2})

	surviving, _ := reg.Handle(c2.Key)

	p3 := prodEntity(3, "Plant Three")
	reg.Reconcile([]domain.MapEntity{c2, p3})

	if _, ok := reg.Handle(p1.Key); ok {
		t.Error("handle for removed production/1 still present")
	}
	if _, ok := reg.Handle(p3.Key); !ok {
		t.Error("handle for production/3 was not created")
	}
	after, ok := reg.Handle(c2.Key)
	if !ok || after != surviving {
		t.Error("handle for consumption/2 was not left untouched")
	}
}

// IDs colliding across variants must not collide as keys.
func TestMarkerRegistry_KeysAreVariantScoped(t *testing.T) {
	surface := newFakeSurface()
	reg, _ := newRegistry(surface)

	reg.Reconcile([]domain.MapEntity{prodEntity(7, "Plant"), consEntity(7, "Hotel")})

	if reg.Len() != 2 {
		t.Fatalf("expected 2 handles for same id across variants, got %d", reg.Len())
	}
}

func TestMarkerRegistry_SurfaceNotReady(t *testing.T) {
	surface := newFakeSurface()
	surface.ready = false
	reg, _ := newRegistry(surface)

	entities := []domain.MapEntity{prodEntity(1, "Plant A")}

	reg.Reconcile(entities)
	if reg.Len() != 0 {
		t.Fatalf("reconcile against unready surface created handles")
	}

	// Readiness arrives; re-invoking the same reconcile catches up.
	surface.ready = true
	reg.Reconcile(entities)
	if reg.Len() != 1 {
		t.Errorf("expected 1 handle after retry, got %d", reg.Len())
	}
}

func TestMarkerRegistry_DisposeClosesOwnedPopup(t *testing.T) {
	surface := newFakeSurface()
	reg, pop := newRegistry(surface)

	e1 := prodEntity(1, "Plant A")
	e2 := consEntity(2, "Site B")
	reg.Reconcile([]domain.MapEntity{e1, e2})

	pop.Open(e1.Key)
	if _, open := pop.Current(); !open {
		t.Fatal("popup did not open")
	}

	// e1 disappears from the dataset; its popup must not dangle.
	reg.Reconcile([]domain.MapEntity{e2})

	if _, open := pop.Current(); open {
		t.Error("popup still open after its marker was disposed")
	}
	if surface.popupOwner != nil {
		t.Error("surface popup not closed")
	}
}

func TestMarkerRegistry_DisposeKeepsUnrelatedPopup(t *testing.T) {
	surface := newFakeSurface()
	reg, pop := newRegistry(surface)

	e1 := prodEntity(1, "Plant A")
	e2 := consEntity(2, "Site B")
	reg.Reconcile([]domain.MapEntity{e1, e2})

	pop.Open(e2.Key)
	reg.Reconcile([]domain.MapEntity{e2})

	st, open := pop.Current()
	if !open || st.Owner != e2.Key {
		t.Error("popup owned by a surviving marker was closed")
	}
}

func TestMarkerRegistry_ClickOpensPopup(t *testing.T) {
	surface := newFakeSurface()
	reg, pop := newRegistry(surface)

	e := prodEntity(1, "Plant A")
	reg.Reconcile([]domain.MapEntity{e})

	reg.OnMarkerClick(e.Key)

	st, open := pop.Current()
	if !open || st.Owner != e.Key {
		t.Fatalf("click did not open popup for %s", e.Key)
	}

	// A click for a marker that no longer exists is dropped.
	gone := domain.EntityKey{Kind: domain.KindProduction, ID: 99}
	reg.OnMarkerClick(gone)
	st, _ = pop.Current()
	if st.Owner != e.Key {
		t.Error("stale click changed popup ownership")
	}
}
