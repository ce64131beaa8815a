package geospatial

import (
	"math"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// tileSize matches the 512px vector tiles the map client renders.
const tileSize = 512.0

// Camera is the part of the client camera state needed for projection.
type Camera struct {
	Center domain.GeoPoint `json:"center"`
	Zoom   float64         `json:"zoom"`
}

// Project converts a geographic coordinate into viewport pixels under a
// spherical Web Mercator projection centered on cam.Center. The result may
// lie outside the viewport when the point is off screen.
func Project(p domain.GeoPoint, cam Camera, vp domain.Viewport) domain.ScreenPoint {
	scale := tileSize * math.Exp2(cam.Zoom)

	wx, wy := worldXY(p, scale)
	cx, cy := worldXY(cam.Center, scale)

	return domain.ScreenPoint{
		X: wx - cx + vp.Width/2,
		Y: wy - cy + vp.Height/2,
	}
}

// worldXY maps a coordinate onto the mercator plane scaled to `scale`
// pixels per world copy. Latitude is clamped to the mercator limit so
// poles do not produce infinities.
func worldXY(p domain.GeoPoint, scale float64) (float64, float64) {
	lat := math.Max(-85.05112878, math.Min(85.05112878, p.Lat))
	phi := toRad(lat)

	x := (p.Lng + 180) / 360 * scale
	y := (1 - math.Log(math.Tan(phi)+1/math.Cos(phi))/math.Pi) / 2 * scale
	return x, y
}
