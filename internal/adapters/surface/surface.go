// Package surface implements ports.RenderSurface over a wire protocol.
// The server owns all map state; the connected client is a thin renderer
// that executes commands and reports camera and viewport changes back.
package surface

import (
	"sync"
	"time"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/geospatial"
)

// Transport delivers render commands to one client. Implementations must be
// safe for concurrent Send calls or serialize them internally.
type Transport interface {
	Send(v any) error
}

// Command is a single render instruction sent to the client.
type Command struct {
	Op         string               `json:"op"`
	Key        *domain.EntityKey    `json:"key,omitempty"`
	Location   *domain.GeoPoint     `json:"location,omitempty"`
	Content    domain.RenderContent `json:"content,omitempty"`
	Visible    *bool                `json:"visible,omitempty"`
	Anchor     domain.Anchor        `json:"anchor,omitempty"`
	Offset     *domain.Offset       `json:"offset,omitempty"`
	Pitch      float64              `json:"pitch,omitempty"`
	Bearing    float64              `json:"bearing,omitempty"`
	DurationMS int64                `json:"duration_ms,omitempty"`
}

// Command ops understood by the client renderer.
const (
	OpMarkerAdd     = "marker_add"
	OpMarkerRemove  = "marker_remove"
	OpMarkerVisible = "marker_visible"
	OpPopupOpen     = "popup_open"
	OpPopupClose    = "popup_close"
	OpCameraEase    = "camera_ease"
	OpExtrusions    = "extrusions"
)

// Surface tracks one client's camera state and translates core render calls
// into wire commands.
type Surface struct {
	mu        sync.RWMutex
	transport Transport
	ready     bool
	viewport  domain.Viewport
	camera    geospatial.Camera
}

// New creates a Surface over the given transport. The surface starts not
// ready; the client announces readiness with its first camera report.
func New(t Transport) *Surface {
	return &Surface{transport: t}
}

// HandleReady records the client's initial camera state and marks the
// surface ready for render commands.
func (s *Surface) HandleReady(cam geospatial.Camera, vp domain.Viewport) {
	s.mu.Lock()
	s.camera = cam
	s.viewport = vp
	s.ready = true
	s.mu.Unlock()
}

// HandleViewport updates camera and viewport from a client move or resize.
func (s *Surface) HandleViewport(cam geospatial.Camera, vp domain.Viewport) {
	s.mu.Lock()
	s.camera = cam
	s.viewport = vp
	s.mu.Unlock()
}

// Ready implements ports.RenderSurface.
func (s *Surface) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Viewport implements ports.RenderSurface.
func (s *Surface) Viewport() domain.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Project implements ports.RenderSurface using the last reported camera.
func (s *Surface) Project(p domain.GeoPoint) (domain.ScreenPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return domain.ScreenPoint{}, false
	}
	return geospatial.Project(p, s.camera, s.viewport), true
}

// AddMarker implements ports.RenderSurface.
func (s *Surface) AddMarker(key domain.EntityKey, at domain.GeoPoint, content domain.RenderContent) error {
	return s.transport.Send(Command{
		Op: OpMarkerAdd, Key: &key, Location: &at, Content: content,
	})
}

// RemoveMarker implements ports.RenderSurface.
func (s *Surface) RemoveMarker(key domain.EntityKey) {
	_ = s.transport.Send(Command{Op: OpMarkerRemove, Key: &key})
}

// SetMarkerVisible implements ports.RenderSurface.
func (s *Surface) SetMarkerVisible(key domain.EntityKey, visible bool) {
	_ = s.transport.Send(Command{Op: OpMarkerVisible, Key: &key, Visible: &visible})
}

// OpenPopup implements ports.RenderSurface.
func (s *Surface) OpenPopup(key domain.EntityKey, at domain.GeoPoint, pl domain.Placement, content domain.RenderContent) error {
	return s.transport.Send(Command{
		Op: OpPopupOpen, Key: &key, Location: &at, Content: content,
		Anchor: pl.Anchor, Offset: &pl.Offset,
	})
}

// ClosePopup implements ports.RenderSurface.
func (s *Surface) ClosePopup() {
	_ = s.transport.Send(Command{Op: OpPopupClose})
}

// EaseTo implements ports.RenderSurface.
func (s *Surface) EaseTo(pitch, bearing float64, duration time.Duration) {
	_ = s.transport.Send(Command{
		Op: OpCameraEase, Pitch: pitch, Bearing: bearing,
		DurationMS: duration.Milliseconds(),
	})
}

// SetExtrusionsVisible implements ports.RenderSurface.
func (s *Surface) SetExtrusionsVisible(visible bool) {
	_ = s.transport.Send(Command{Op: OpExtrusions, Visible: &visible})
}
