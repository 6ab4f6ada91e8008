// Package mapview is a headless map widget. It keeps its center in Web
// Mercator meters (EPSG:3857) like the browser map it stands in for.
package mapview

import (
	"epsg-map-service/internal/domain"
	"math"

	"github.com/paulmach/orb"
)

const (
	DefaultZoom = 8
	MaxZoom     = domain.MaxZoom

	tileSize    = 256
	earthRadius = 6378137.0
)

// resolution at zoom 0 in meters per pixel.
var resolution0 = 2 * math.Pi * earthRadius / tileSize

// View holds the widget state. It is not safe for concurrent use; a page
// session drives it from its event loop.
type View struct {
	center    orb.Point
	zoom      int
	width     int
	height    int
	layer     string
	listeners []func(center orb.Point)
}

func New(center orb.Point, zoom, width, height int, layer string) *View {
	v := &View{center: center, width: width, height: height, layer: layer}
	v.zoom = clampZoom(zoom)
	return v
}

func (v *View) Center() orb.Point { return v.center }

// SetCenter moves the view and notifies listeners, even when the center is unchanged.
func (v *View) SetCenter(center orb.Point) {
	v.center = center
	for _, fn := range v.listeners {
		fn(center)
	}
}

func (v *View) Zoom() int { return v.zoom }

func (v *View) SetZoom(zoom int) { v.zoom = clampZoom(zoom) }

// Fit picks the largest integer zoom that shows the whole extent, then centers on it.
func (v *View) Fit(extent orb.Bound) {
	w := extent.Max[0] - extent.Min[0]
	h := extent.Max[1] - extent.Min[1]

	res := math.Max(w/float64(v.width), h/float64(v.height))
	if res > 0 {
		v.SetZoom(int(math.Floor(math.Log2(resolution0 / res))))
	} else {
		v.SetZoom(MaxZoom)
	}
	v.SetCenter(extent.Center())
}

func (v *View) Layer() string { return v.layer }

func (v *View) SetLayer(layer string) { v.layer = layer }

func (v *View) OnCenterChanged(fn func(center orb.Point)) {
	v.listeners = append(v.listeners, fn)
}

// Size returns the viewport size in pixels.
func (v *View) Size() (int, int) { return v.width, v.height }

func clampZoom(z int) int {
	if z < 0 {
		return 0
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
