package usecases

import (
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// Band thresholds for popup placement. The viewport is split into a 3x3
// grid; a marker near an edge gets a popup anchored so the body is pushed
// away from that edge.
const (
	topBandMax    = 0.4
	bottomBandMin = 0.6
	leftBandMax   = 0.3
	rightBandMin  = 0.7

	popupHug = 10 // px
)

// PlacementFor selects the popup anchor and offset for a marker projected
// at pt inside a viewport of size vp. Pure and deterministic: identical
// inputs always yield identical placements. Boundary values fall into the
// middle band (strict inequalities). A zero-size viewport resolves to the
// default bottom anchor instead of failing.
func PlacementFor(pt domain.ScreenPoint, vp domain.Viewport) domain.Placement {
	if vp.Width <= 0 || vp.Height <= 0 {
		return domain.Placement{
			Anchor: domain.AnchorBottom,
			Offset: domain.Offset{DX: 0, DY: -popupHug},
		}
	}

	nx := pt.X / vp.Width
	ny := pt.Y / vp.Height

	top := ny < topBandMax
	bottom := ny > bottomBandMin
	left := nx < leftBandMax
	right := nx > rightBandMin

	switch {
	case top && left:
		// Near the top-left corner: render down and to the right.
		return domain.Placement{
			Anchor: domain.AnchorTopLeft,
			Offset: domain.Offset{DX: -popupHug, DY: -popupHug},
		}
	case top && right:
		return domain.Placement{
			Anchor: domain.AnchorTopRight,
			Offset: domain.Offset{DX: popupHug, DY: -popupHug},
		}
	case top:
		// Top band, horizontally centered: render below the marker.
		return domain.Placement{
			Anchor: domain.AnchorTop,
			Offset: domain.Offset{DX: 0, DY: popupHug},
		}
	case bottom && left:
		// Near the bottom-left corner: render up and to the right.
		return domain.Placement{
			Anchor: domain.AnchorBottomLeft,
			Offset: domain.Offset{DX: -popupHug, DY: popupHug},
		}
	case bottom && right:
		return domain.Placement{
			Anchor: domain.AnchorBottomRight,
			Offset: domain.Offset{DX: popupHug, DY: popupHug},
		}
	case bottom:
		// Bottom band, horizontally centered: render above the marker.
		return domain.Placement{
			Anchor: domain.AnchorBottom,
			Offset: domain.Offset{DX: 0, DY: -popupHug},
		}
	case left:
		return domain.Placement{
			Anchor: domain.AnchorLeft,
			Offset: domain.Offset{DX: popupHug, DY: 0},
		}
	case right:
		return domain.Placement{
			Anchor: domain.AnchorRight,
			Offset: domain.Offset{DX: -popupHug, DY: 0},
		}
	default:
		// Dead center: default to rendering above the marker.
		return domain.Placement{
			Anchor: domain.AnchorBottom,
			Offset: domain.Offset{DX: 0, DY: -popupHug},
		}
	}
}
