package ports

import "epsg-map-service/internal/domain"

// DegreeDisplay shows the canonical position as longitude/latitude fields.
type DegreeDisplay interface {
	// Show a position. Nil clears the fields.
	SetLonLat(pos *domain.Coordinates)
}

// EastNorthDisplay shows the position projected into the active SRS.
type EastNorthDisplay interface {
	SetEastNorth(en domain.EastNorth)
	EastNorth() domain.EastNorth
}

// SRSDetailView is the heading, detail link and copy button of a dynamic page.
type SRSDetailView interface {
	SetSRSDetail(title, link string, visible bool)
}

// HashSink receives the URL fragment whenever visible state changes.
type HashSink interface {
	WriteHash(fragment string)
}
