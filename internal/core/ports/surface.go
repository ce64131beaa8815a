package ports

import (
	"time"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// RenderSurface is the map-rendering collaborator. The core drives it with
// marker, popup, and camera commands; the surface reports readiness and
// screen-space geometry back. Implementations must tolerate commands for
// keys they no longer know about.
type RenderSurface interface {
	// Ready reports whether the surface can accept render commands.
	// While false, reconciliation is deferred, not failed.
	Ready() bool

	// Viewport returns the current surface size in pixels. A zero viewport
	// is a valid (degenerate) answer before the first resize event.
	Viewport() domain.Viewport

	// Project converts a geographic coordinate to viewport pixels. The
	// second return is false when the surface cannot project yet.
	Project(p domain.GeoPoint) (domain.ScreenPoint, bool)

	AddMarker(key domain.EntityKey, at domain.GeoPoint, content domain.RenderContent) error
	RemoveMarker(key domain.EntityKey)
	SetMarkerVisible(key domain.EntityKey, visible bool)

	OpenPopup(key domain.EntityKey, at domain.GeoPoint, pl domain.Placement, content domain.RenderContent) error
	ClosePopup()

	EaseTo(pitch, bearing float64, duration time.Duration)
	SetExtrusionsVisible(visible bool)
}

// MarkerClickSink receives marker click events from the rendering surface.
// The marker registry implements it; the surface adapter invokes it.
type MarkerClickSink interface {
	OnMarkerClick(key domain.EntityKey)
}
