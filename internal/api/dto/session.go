package dto

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type CreateSessionRequest struct {
	// SRS fixes the page to one system; empty creates a dynamic page.
	SRS  string      `json:"srs"`
	BBox *[4]float64 `json:"bbox"`
	Lon  *float64    `json:"lon"`
	Lat  *float64    `json:"lat"`
	Hash string      `json:"hash"`
}

type PositionRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

// EastNorthRequest carries the raw field text, so non-numeric input can be
// reported as ignored rather than rejected.
type EastNorthRequest struct {
	Easting  string `json:"easting"`
	Northing string `json:"northing"`
}

type SRSRequest struct {
	Code string `json:"code"`
}

type LayerRequest struct {
	Layer string `json:"layer"`
}

type ZoomRequest struct {
	Zoom *int `json:"zoom"`
}

type GeocodeRequest struct {
	// BBox is [n, w, s, e] in degrees.
	BBox *[4]float64 `json:"bbox"`
}

type EastNorthResponse struct {
	Status   string   `json:"status"`
	Easting  *float64 `json:"easting,omitempty"`
	Northing *float64 `json:"northing,omitempty"`
}

type SRSResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name,omitempty"`
	Title         string `json:"title,omitempty"`
	Link          string `json:"link,omitempty"`
	DetailVisible bool   `json:"detail_visible"`
}

type SessionResponse struct {
	ID           string            `json:"id"`
	Dynamic      bool              `json:"dynamic"`
	SRS          SRSResponse       `json:"srs"`
	Position     []float64         `json:"position"`
	DegreeFields []float64         `json:"degree_fields"`
	EastNorth    EastNorthResponse `json:"east_north"`
	Zoom         int               `json:"zoom"`
	Layer        string            `json:"layer"`
	Hash         string            `json:"hash"`
	CopyText     string            `json:"copy_text"`
	Accepted     bool              `json:"accepted"`
}
