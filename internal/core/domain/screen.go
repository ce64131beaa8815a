package domain

import "encoding/json"

// ScreenPoint is a projected position in viewport pixels.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the size of the rendering surface in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Anchor names the popup edge or corner pinned nearest to its target point.
// A popup anchored "top" renders below the marker, "bottom-left" extends
// up and to the right, and so on.
type Anchor string

const (
	AnchorCenter      Anchor = "center"
	AnchorTop         Anchor = "top"
	AnchorBottom      Anchor = "bottom"
	AnchorLeft        Anchor = "left"
	AnchorRight       Anchor = "right"
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
)

// Offset shifts a popup relative to its anchor point, in pixels.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Placement is a computed anchor/offset pair for one popup.
type Placement struct {
	Anchor Anchor `json:"anchor"`
	Offset Offset `json:"offset"`
}

// ViewMode is the 2D/3D camera configuration of the map.
type ViewMode string

const (
	ViewMode2D ViewMode = "2d"
	ViewMode3D ViewMode = "3d"
)

// RenderContent is an opaque renderable payload handed to the rendering
// surface for a marker or popup body. The map core never inspects it;
// construction is injected as a pure function of the entity.
type RenderContent = json.RawMessage
