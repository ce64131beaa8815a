package usecases

import (
	"encoding/json"
	"sync"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// MapSession wires one rendering surface to the shared entity store. It
// owns the marker registry, visibility filter, popup engine, and view-mode
// controller for that surface; the host holds a session reference instead
// of reaching into module-level state.
//
// All session operations are serialized by an internal mutex: surface
// events and store notifications arrive on different goroutines but the
// engines themselves run strictly one event at a time.
type MapSession struct {
	mu sync.Mutex

	store   *EntityStore
	surface ports.RenderSurface

	registry *MarkerRegistry
	filter   *VisibilityFilter
	popups   *PopupEngine
	view     *ViewModeController

	unsubscribe func()
	done        bool
}

// NewMapSession builds a session over surface. The injected content
// function is optional; DefaultRenderContent is used when nil.
func NewMapSession(store *EntityStore, surface ports.RenderSurface, camera CameraConfig, content func(domain.MapEntity) domain.RenderContent) *MapSession {
	if content == nil {
		content = DefaultRenderContent
	}

	registry := NewMarkerRegistry(surface, content)
	popups := NewPopupEngine(surface, registry, content)
	registry.AttachPopups(popups)

	s := &MapSession{
		store:    store,
		surface:  surface,
		registry: registry,
		filter:   NewVisibilityFilter(registry),
		popups:   popups,
		view:     NewViewModeController(surface, camera),
	}

	s.unsubscribe = store.Subscribe(func(snap Snapshot) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.done {
			return
		}
		s.reconcileLocked(snap)
	})

	metrics.SessionsActive.Inc()
	return s
}

// HandleSurfaceReady re-runs the deferred work once the surface reports
// ready: apply the active view mode, reconcile against the current
// snapshot, and re-apply the filter. Safe to call more than once.
func (s *MapSession) HandleSurfaceReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}

	s.view.SyncSurface()
	if snap, ok := s.store.Snapshot(); ok {
		s.reconcileLocked(snap)
	}
}

// ApplyFilter updates the live search query.
func (s *MapSession) ApplyFilter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.filter.Apply(query)
}

// HandleMarkerClick routes a surface click event into the registry.
func (s *MapSession) HandleMarkerClick(key domain.EntityKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.registry.OnMarkerClick(key)
}

// ClosePopup closes the open popup, if any.
func (s *MapSession) ClosePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.popups.Close()
}

// ToggleViewMode flips between 2D and 3D and returns the new mode.
func (s *MapSession) ToggleViewMode() domain.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.view.Mode()
	}
	return s.view.Toggle()
}

// SetViewMode requests an explicit mode; already-active modes are no-ops.
func (s *MapSession) SetViewMode(mode domain.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.view.Set(mode)
}

// Registry exposes the marker registry, mainly for tests and diagnostics.
func (s *MapSession) Registry() *MarkerRegistry { return s.registry }

// Popups exposes the popup engine.
func (s *MapSession) Popups() *PopupEngine { return s.popups }

// ViewMode returns the active camera mode.
func (s *MapSession) ViewMode() domain.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Mode()
}

// Teardown detaches from the store and disposes every handle. Pending
// refresh results delivered after this point are ignored.
func (s *MapSession) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	s.unsubscribe()
	s.popups.Close()
	s.registry.DisposeAll()
	metrics.SessionsActive.Dec()
}

func (s *MapSession) reconcileLocked(snap Snapshot) {
	s.registry.Reconcile(snap.Entities())
	s.filter.Reapply()
}

// siteView is the payload DefaultRenderContent marshals for markers and
// popup bodies. The host decides how to present it.
type siteView struct {
	Kind     domain.SiteKind `json:"kind"`
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Lat      float64         `json:"lat"`
	Lng      float64         `json:"lng"`
	StatusOK bool            `json:"status_ok"`
}

// DefaultRenderContent builds the standard renderable payload for an
// entity. Pure: same entity in, same bytes out.
func DefaultRenderContent(e domain.MapEntity) domain.RenderContent {
	data, err := json.Marshal(siteView{
		Kind:     e.Key.Kind,
		ID:       e.Key.ID,
		Name:     e.Name,
		Lat:      e.Location.Lat,
		Lng:      e.Location.Lng,
		StatusOK: e.StatusOK,
	})
	if err != nil {
		return domain.RenderContent(`{}`)
	}
	return domain.RenderContent(data)
}
