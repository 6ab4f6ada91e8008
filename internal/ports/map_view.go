package ports

import "github.com/paulmach/orb"

// MapView is the map widget. Centers and extents are in the widget's native
// projection (Web Mercator meters); callers convert lon/lat at this boundary.
type MapView interface {
	Center() orb.Point
	SetCenter(center orb.Point)
	Zoom() int
	SetZoom(zoom int)
	// Fit the view to an extent in native coordinates.
	Fit(extent orb.Bound)
	Layer() string
	SetLayer(layer string)
	// Register a listener called synchronously after every center change.
	OnCenterChanged(fn func(center orb.Point))
}
