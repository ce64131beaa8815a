package usecases

import (
	"log/slog"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// MarkerHandle is the live, registry-owned representation of one entity on
// the map. Exactly one handle exists per live entity; identity is the
// (variant, id) key, never a position in a slice.
type MarkerHandle struct {
	Key     domain.EntityKey
	Entity  domain.MapEntity
	visible bool
}

// Visible reports whether the handle passed the active visibility filter.
func (h *MarkerHandle) Visible() bool { return h.visible }

// MarkerRegistry keeps the rendered marker set in sync with the current
// entity collections. Reconciliation is incremental and idempotent:
// surviving handles are left untouched, so repeated reconciles with the
// same input create and destroy nothing.
type MarkerRegistry struct {
	surface ports.RenderSurface
	popups  *PopupEngine
	content func(domain.MapEntity) domain.RenderContent
	handles map[domain.EntityKey]*MarkerHandle
}

// NewMarkerRegistry creates an empty registry rendering through surface.
// content builds the marker payload for an entity and must be pure.
func NewMarkerRegistry(surface ports.RenderSurface, content func(domain.MapEntity) domain.RenderContent) *MarkerRegistry {
	return &MarkerRegistry{
		surface: surface,
		content: content,
		handles: make(map[domain.EntityKey]*MarkerHandle),
	}
}

// AttachPopups wires the popup engine so disposing a marker closes any
// popup it owns, and clicks open popups.
func (r *MarkerRegistry) AttachPopups(p *PopupEngine) { r.popups = p }

// Reconcile diffs the live handle set against entities. Missing markers are
// created, stale ones disposed (closing their popup first), surviving ones
// left alone even if non-identity fields changed. A surface that is not
// ready makes this a no-op; since the diff is idempotent, the caller just
// re-invokes on the next readiness or data event.
func (r *MarkerRegistry) Reconcile(entities []domain.MapEntity) {
	if !r.surface.Ready() {
		return
	}

	want := make(map[domain.EntityKey]domain.MapEntity, len(entities))
	for _, e := range entities {
		want[e.Key] = e
	}

	for key, h := range r.handles {
		if _, ok := want[key]; ok {
			continue
		}
		r.dispose(h)
	}

	created := 0
	for key, e := range want {
		if h, ok := r.handles[key]; ok {
			// Same identity: keep the handle, only track the latest fields
			// so popups opened later see fresh data.
			h.Entity = e
			continue
		}
		if err := r.surface.AddMarker(key, e.Location, r.content(e)); err != nil {
			slog.Warn("marker attach failed", "key", key.String(), "error", err)
			continue
		}
		r.handles[key] = &MarkerHandle{Key: key, Entity: e, visible: true}
		created++
	}

	if created > 0 {
		metrics.MarkersReconciled.Add(float64(created))
	}
	metrics.MarkersLive.Set(float64(len(r.handles)))
}

// OnMarkerClick implements ports.MarkerClickSink by opening the popup for
// the clicked marker.
func (r *MarkerRegistry) OnMarkerClick(key domain.EntityKey) {
	if r.popups == nil {
		return
	}
	if _, ok := r.handles[key]; !ok {
		// Click raced a removal; the marker is gone.
		return
	}
	r.popups.Open(key)
}

// Entity implements EntityLookup for the popup engine.
func (r *MarkerRegistry) Entity(key domain.EntityKey) (domain.MapEntity, bool) {
	h, ok := r.handles[key]
	if !ok {
		return domain.MapEntity{}, false
	}
	return h.Entity, true
}

// Handle returns the live handle for key, if any.
func (r *MarkerRegistry) Handle(key domain.EntityKey) (*MarkerHandle, bool) {
	h, ok := r.handles[key]
	return h, ok
}

// Each calls fn for every live handle.
func (r *MarkerRegistry) Each(fn func(*MarkerHandle)) {
	for _, h := range r.handles {
		fn(h)
	}
}

// Len returns the number of live handles.
func (r *MarkerRegistry) Len() int { return len(r.handles) }

// DisposeAll detaches every handle, used on session teardown.
func (r *MarkerRegistry) DisposeAll() {
	for _, h := range r.handles {
		r.dispose(h)
	}
	metrics.MarkersLive.Set(0)
}

func (r *MarkerRegistry) dispose(h *MarkerHandle) {
	if r.popups != nil {
		r.popups.CloseIfOwner(h.Key)
	}
	r.surface.RemoveMarker(h.Key)
	delete(r.handles, h.Key)
}

// setVisible toggles the rendered visibility of a handle without destroying
// it. Used by the visibility filter only.
func (r *MarkerRegistry) setVisible(h *MarkerHandle, visible bool) {
	if h.visible == visible {
		return
	}
	h.visible = visible
	r.surface.SetMarkerVisible(h.Key, visible)
}
