package domain

import "math"

// Immutable geographic coordinates (longitude, latitude) in degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// IsFinite reports whether both components are finite numbers.
func (c Coordinates) IsFinite() bool {
	return isFinite(c.Lon) && isFinite(c.Lat)
}

// InRange reports whether the coordinates lie within the geographic domain.
func (c Coordinates) InRange() bool {
	return c.IsFinite() && math.Abs(c.Lon) <= 180 && math.Abs(c.Lat) <= 90
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
