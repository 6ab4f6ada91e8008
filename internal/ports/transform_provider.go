package ports

import (
	"context"
	"epsg-map-service/internal/domain"
)

// A single coordinate pair to transform between the base system and SRS.
// Forward requests read X/Y as lon/lat; inverse requests read them as easting/northing.
type TransformRequest struct {
	Direction domain.Direction
	SRS       string
	X         float64
	Y         float64
}

// Transformed coordinate pair in the requested target representation.
type TransformResult struct {
	X float64
	Y float64
}

// Contract for the remote coordinate-transform service.
type TransformProvider interface {
	// Transform one pair. Completion order across calls is not guaranteed.
	Transform(ctx context.Context, req TransformRequest) (TransformResult, error)
}
