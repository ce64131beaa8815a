package usecases_test

import (
	"time"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// fakeSurface records render commands so tests can assert on the exact
// calls the core issued.
type fakeSurface struct {
	ready bool
	vp    domain.Viewport

	projectFn func(p domain.GeoPoint) (domain.ScreenPoint, bool)

	markers    map[domain.EntityKey]domain.GeoPoint
	visible    map[domain.EntityKey]bool
	addCalls   int
	removeList []domain.EntityKey

	popupOwner     *domain.EntityKey
	popupPlacement domain.Placement
	popupOpens     int
	popupCloses    int

	easeCalls   int
	lastPitch   float64
	lastBearing float64
	lastEase    time.Duration
	extrusions  bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		ready:   true,
		vp:      domain.Viewport{Width: 800, Height: 600},
		markers: make(map[domain.EntityKey]domain.GeoPoint),
		visible: make(map[domain.EntityKey]bool),
	}
}

func (f *fakeSurface) Ready() bool               { return f.ready }
func (f *fakeSurface) Viewport() domain.Viewport { return f.vp }

func (f *fakeSurface) Project(p domain.GeoPoint) (domain.ScreenPoint, bool) {
	if f.projectFn != nil {
		return f.projectFn(p)
	}
	return domain.ScreenPoint{X: f.vp.Width / 2, Y: f.vp.Height / 2}, true
}

func (f *fakeSurface) AddMarker(key domain.EntityKey, at domain.GeoPoint, content domain.RenderContent) error {
	f.markers[key] = at
	f.visible[key] = true
	f.addCalls++
	return nil
}

func (f *fakeSurface) RemoveMarker(key domain.EntityKey) {
	delete(f.markers, key)
	delete(f.visible, key)
	f.removeList = append(f.removeList, key)
}

func (f *fakeSurface) SetMarkerVisible(key domain.EntityKey, visible bool) {
	f.visible[key] = visible
}

func (f *fakeSurface) OpenPopup(key domain.EntityKey, at domain.GeoPoint, pl domain.Placement, content domain.RenderContent) error {
	k := key
	f.popupOwner = &k
	f.popupPlacement = pl
	f.popupOpens++
	return nil
}

func (f *fakeSurface) ClosePopup() {
	f.popupOwner = nil
	f.popupCloses++
}

func (f *fakeSurface) EaseTo(pitch, bearing float64, duration time.Duration) {
	f.easeCalls++
	f.lastPitch = pitch
	f.lastBearing = bearing
	f.lastEase = duration
}

func (f *fakeSurface) SetExtrusionsVisible(visible bool) { f.extrusions = visible }

// --- shared fixtures ---

func prodEntity(id int64, name string) domain.MapEntity {
	return domain.MapEntity{
		Key:      domain.EntityKey{Kind: domain.KindProduction, ID: id},
		Name:     name,
		Location: domain.GeoPoint{Lat: 37.78, Lng: -122.40},
		StatusOK: true,
	}
}

func consEntity(id int64, name string) domain.MapEntity {
	return domain.MapEntity{
		Key:      domain.EntityKey{Kind: domain.KindConsumption, ID: id},
		Name:     name,
		Location: domain.GeoPoint{Lat: 37.75, Lng: -122.39},
		StatusOK: true,
	}
}
