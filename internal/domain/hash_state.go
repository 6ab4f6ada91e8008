package domain

// MaxZoom is the deepest zoom level the map offers; zoom levels start at 0.
const MaxZoom = 19

// HashState is the snapshot of visible state written to the URL fragment.
type HashState struct {
	SRS   string // emitted only in dynamic mode
	Lon   float64
	Lat   float64
	Zoom  int
	Layer string // omitted from the fragment when it equals the default layer
}

// PartialHashState is a decoded fragment. Nil or empty fields were absent or unparsable.
type PartialHashState struct {
	SRS   string
	Lon   *float64
	Lat   *float64
	Zoom  *int
	Layer string
}

// Position returns the decoded position when both lon and lat are present.
func (p PartialHashState) Position() (Coordinates, bool) {
	if p.Lon == nil || p.Lat == nil {
		return Coordinates{}, false
	}
	c := Coordinates{Lon: *p.Lon, Lat: *p.Lat}
	return c, c.IsFinite()
}
