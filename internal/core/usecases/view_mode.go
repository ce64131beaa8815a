package usecases

import (
	"time"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
)

// CameraConfig holds the 3D camera pose and the transition duration shared
// by both directions of the toggle.
type CameraConfig struct {
	Pitch      float64
	Bearing    float64
	Transition time.Duration
}

// DefaultCamera is the tilt used when no configuration overrides it.
var DefaultCamera = CameraConfig{
	Pitch:      60,
	Bearing:    -20,
	Transition: time.Second,
}

// ViewModeController is a two-state camera controller. The map starts in
// 3D; only explicit requests transition it. A transition is fire-and-forget
// on the surface: a new request simply supersedes any in-flight ease, so no
// cancellation token or animation queue exists.
type ViewModeController struct {
	surface ports.RenderSurface
	cfg     CameraConfig
	mode    domain.ViewMode
}

// NewViewModeController creates a controller starting in 3D mode.
func NewViewModeController(surface ports.RenderSurface, cfg CameraConfig) *ViewModeController {
	if cfg.Transition <= 0 {
		cfg = DefaultCamera
	}
	return &ViewModeController{surface: surface, cfg: cfg, mode: domain.ViewMode3D}
}

// Mode returns the active view mode.
func (c *ViewModeController) Mode() domain.ViewMode { return c.mode }

// Set transitions to mode. Requesting the already-active mode is an
// idempotent no-op: no camera call is issued, however rapidly it repeats.
// It returns true when a transition was started.
func (c *ViewModeController) Set(mode domain.ViewMode) bool {
	if mode == c.mode {
		return false
	}
	c.mode = mode
	c.apply()
	return true
}

// Toggle switches to the other mode and returns the new one.
func (c *ViewModeController) Toggle() domain.ViewMode {
	if c.mode == domain.ViewMode3D {
		c.Set(domain.ViewMode2D)
	} else {
		c.Set(domain.ViewMode3D)
	}
	return c.mode
}

// SyncSurface re-applies the active mode to the surface. Used when the
// surface (re)connects so a fresh canvas picks up the camera pose.
func (c *ViewModeController) SyncSurface() {
	c.apply()
}

func (c *ViewModeController) apply() {
	switch c.mode {
	case domain.ViewMode3D:
		c.surface.EaseTo(c.cfg.Pitch, c.cfg.Bearing, c.cfg.Transition)
		c.surface.SetExtrusionsVisible(true)
	default:
		c.surface.EaseTo(0, 0, c.cfg.Transition)
		c.surface.SetExtrusionsVisible(false)
	}
}
