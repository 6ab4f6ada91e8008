package services

import (
	"context"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
)

// SRSSession handles SRS picks on a dynamic page.
type SRSSession struct {
	coord   *Coordinator
	catalog ports.SRSCatalog

	// recenter fits the map to the picked system's area of use when the
	// current center lies outside it.
	recenter bool
}

func NewSRSSession(coord *Coordinator, catalog ports.SRSCatalog, recenter bool) *SRSSession {
	return &SRSSession{coord: coord, catalog: catalog, recenter: recenter}
}

// Select applies a pick from the SRS search.
func (s *SRSSession) Select(sel domain.SRSSelection) bool {
	if !s.coord.SetActiveSRS(sel.Code, sel.Name) {
		return false
	}
	if s.recenter && sel.BBox != nil {
		s.coord.RecenterOn(*sel.BBox)
	}
	return true
}

// SelectCode resolves code through the catalog, then selects it. Codes the
// catalog does not know are still selected, without a name or area of use.
// Catalog failures are returned after the bare code has been selected.
func (s *SRSSession) SelectCode(ctx context.Context, code string) error {
	code = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(code)), "EPSG:")
	if code == "" {
		return errors.New("srs session: empty code")
	}

	sel := domain.SRSSelection{Code: code}
	var lookupErr error
	if s.catalog != nil {
		found, err := s.catalog.Lookup(ctx, code)
		switch {
		case err == nil:
			sel = found
		case errors.Is(err, domain.ErrSRSNotFound):
			log.Printf("srs session: code=%s not in catalog", code)
		default:
			lookupErr = fmt.Errorf("srs session: lookup %s: %w", code, err)
		}
	}

	s.Select(sel)
	return lookupErr
}
