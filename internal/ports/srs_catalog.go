package ports

import (
	"context"
	"epsg-map-service/internal/domain"
)

// Port: a boundary for resolving SRS codes to their display name and area of use.
type SRSCatalog interface {
	// Resolve one code. Returns domain.ErrSRSNotFound for unknown codes.
	Lookup(ctx context.Context, code string) (domain.SRSSelection, error)
}
