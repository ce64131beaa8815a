package usecases

import (
	"log/slog"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

// EntityLookup resolves an entity by key. The marker registry implements it.
type EntityLookup interface {
	Entity(key domain.EntityKey) (domain.MapEntity, bool)
}

// PopupState describes the single currently-open popup.
type PopupState struct {
	Owner     domain.EntityKey
	Placement domain.Placement
}

// PopupEngine owns the single popup on the map. Opening a popup for a new
// marker implicitly closes the previous one; there is never a stack.
type PopupEngine struct {
	surface ports.RenderSurface
	lookup  EntityLookup
	content func(domain.MapEntity) domain.RenderContent
	open    *PopupState
}

// NewPopupEngine creates a popup engine rendering popups through surface.
// content builds the popup body for an entity.
func NewPopupEngine(surface ports.RenderSurface, lookup EntityLookup, content func(domain.MapEntity) domain.RenderContent) *PopupEngine {
	return &PopupEngine{surface: surface, lookup: lookup, content: content}
}

// Open places a popup for the marker identified by key. Unknown keys and a
// not-yet-projectable surface are ignored rather than surfaced as errors;
// the click that triggered the open is simply dropped.
func (e *PopupEngine) Open(key domain.EntityKey) {
	ent, ok := e.lookup.Entity(key)
	if !ok {
		return
	}

	if e.open != nil {
		e.Close()
	}

	pl := e.placeFor(ent)
	if err := e.surface.OpenPopup(key, ent.Location, pl, e.content(ent)); err != nil {
		slog.Warn("popup open failed", "key", key.String(), "error", err)
		return
	}

	e.open = &PopupState{Owner: key, Placement: pl}
	metrics.PopupsOpened.WithLabelValues(string(key.Kind)).Inc()
}

// Close removes the open popup, if any. Safe to call repeatedly.
func (e *PopupEngine) Close() {
	if e.open == nil {
		return
	}
	e.surface.ClosePopup()
	e.open = nil
}

// CloseIfOwner closes the popup only when it belongs to key. The registry
// calls this before disposing a marker so no popup outlives its owner.
func (e *PopupEngine) CloseIfOwner(key domain.EntityKey) {
	if e.open != nil && e.open.Owner == key {
		e.Close()
	}
}

// Current returns the open popup state, if one exists.
func (e *PopupEngine) Current() (PopupState, bool) {
	if e.open == nil {
		return PopupState{}, false
	}
	return *e.open, true
}

func (e *PopupEngine) placeFor(ent domain.MapEntity) domain.Placement {
	pt, ok := e.surface.Project(ent.Location)
	if !ok {
		// No projection yet: fall back to the degenerate-viewport default.
		return PlacementFor(domain.ScreenPoint{}, domain.Viewport{})
	}
	return PlacementFor(pt, e.surface.Viewport())
}
