package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ToWebMercator converts geographic degrees into the map widget projection (EPSG:3857).
func ToWebMercator(c Coordinates) orb.Point {
	return project.WGS84.ToMercator(orb.Point{c.Lon, c.Lat})
}

// FromWebMercator converts a map widget point back into geographic degrees.
func FromWebMercator(p orb.Point) Coordinates {
	ll := project.Mercator.ToWGS84(p)
	return Coordinates{Lon: ll[0], Lat: ll[1]}
}

// WebMercatorBound converts a geographic bound into the map widget projection.
func WebMercatorBound(b orb.Bound) orb.Bound {
	return orb.Bound{
		Min: project.WGS84.ToMercator(b.Min),
		Max: project.WGS84.ToMercator(b.Max),
	}
}
