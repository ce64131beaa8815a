package usecases_test

import (
	"testing"
	"time"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

var testCamera = usecases.CameraConfig{Pitch: 60, Bearing: -20, Transition: time.Second}

func TestViewModeController_StartsIn3D(t *testing.T) {
	surface := newFakeSurface()
	vc := usecases.NewViewModeController(surface, testCamera)

	if vc.Mode() != domain.ViewMode3D {
		t.Errorf("initial mode = %s, want 3d", vc.Mode())
	}
	if surface.easeCalls != 0 {
		t.Error("construction must not animate the camera")
	}
}

func TestViewModeController_SetSameModeIsNoOp(t *testing.T) {
	surface := newFakeSurface()
	vc := usecases.NewViewModeController(surface, testCamera)

	// Rapid repeats of the active mode: no camera call at all.
	for i := 0; i < 5; i++ {
		if vc.Set(domain.ViewMode3D) {
			t.Fatal("Set reported a transition for the active mode")
		}
	}
	if surface.easeCalls != 0 {
		t.Errorf("expected 0 camera calls, got %d", surface.easeCalls)
	}
}

func TestViewModeController_TransitionTo2D(t *testing.T) {
	surface := newFakeSurface()
	vc := usecases.NewViewModeController(surface, testCamera)

	if !vc.Set(domain.ViewMode2D) {
		t.Fatal("expected a transition")
	}
	if surface.lastPitch != 0 || surface.lastBearing != 0 {
		t.Errorf("camera eased to (%g, %g), want (0, 0)", surface.lastPitch, surface.lastBearing)
	}
	if surface.lastEase != time.Second {
		t.Errorf("transition duration = %s, want 1s", surface.lastEase)
	}
	if surface.extrusions {
		t.Error("extrusions still visible in 2D")
	}
}

func TestViewModeController_Toggle(t *testing.T) {
	surface := newFakeSurface()
	vc := usecases.NewViewModeController(surface, testCamera)

	if got := vc.Toggle(); got != domain.ViewMode2D {
		t.Errorf("first toggle = %s, want 2d", got)
	}
	if got := vc.Toggle(); got != domain.ViewMode3D {
		t.Errorf("second toggle = %s, want 3d", got)
	}
	if surface.lastPitch != testCamera.Pitch || surface.lastBearing != testCamera.Bearing {
		t.Errorf("camera eased to (%g, %g), want (%g, %g)",
			surface.lastPitch, surface.lastBearing, testCamera.Pitch, testCamera.Bearing)
	}
	if !surface.extrusions {
		t.Error("extrusions hidden in 3D")
	}
}

// A new request supersedes a (conceptually) in-flight ease: two opposite
// transitions back to back issue two camera calls, no queue and no error.
func TestViewModeController_SupersedingTransition(t *testing.T) {
	surface := newFakeSurface()
	vc := usecases.NewViewModeController(surface, testCamera)

	vc.Set(domain.ViewMode2D)
	vc.Set(domain.ViewMode3D)

	if surface.easeCalls != 2 {
		t.Errorf("expected 2 camera calls, got %d", surface.easeCalls)
	}
	if vc.Mode() != domain.ViewMode3D {
		t.Errorf("mode = %s, want 3d", vc.Mode())
	}
}
