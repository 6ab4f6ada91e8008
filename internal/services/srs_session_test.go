package services

import (
	"context"
	"epsg-map-service/internal/domain"
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
)

type mapCatalog struct {
	entries map[string]domain.SRSSelection
	err     error
}

func (c mapCatalog) Lookup(ctx context.Context, code string) (domain.SRSSelection, error) {
	if c.err != nil {
		return domain.SRSSelection{}, c.err
	}
	sel, ok := c.entries[code]
	if !ok {
		return domain.SRSSelection{}, fmt.Errorf("lookup %q: %w", code, domain.ErrSRSNotFound)
	}
	return sel, nil
}

func boundPtr(b orb.Bound) *orb.Bound { return &b }

var testCatalog = mapCatalog{entries: map[string]domain.SRSSelection{
	"5514": {
		Code: "5514",
		Name: "S-JTSK / Krovak East North",
		BBox: boundPtr(domain.BoundFromNWSE([4]float64{51.06, 12.09, 47.73, 22.56})),
	},
}}

func TestSelectRecentersWhenOutsideArea(t *testing.T) {
	h := newPageHarness(t, domain.IdentityCode, true, false)
	h.coord.Load(domain.Coordinates{Lon: -74, Lat: 40.7}, "", nil)
	s := NewSRSSession(h.coord, testCatalog, true)

	if err := s.SelectCode(context.Background(), "EPSG:5514"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := h.coord.Position()
	if !testCatalog.entries["5514"].BBox.Contains(orb.Point{pos.Lon, pos.Lat}) {
		t.Fatalf("position %v is outside the area of use", pos)
	}
	if got := h.coord.SRS(); got.Code != "5514" || got.Name != "S-JTSK / Krovak East North" {
		t.Fatalf("srs = %+v", got)
	}
}

func TestSelectKeepsCenterInsideArea(t *testing.T) {
	h := newPageHarness(t, domain.IdentityCode, true, false)
	h.coord.Load(domain.Coordinates{Lon: 14.42125, Lat: 50.08755}, "", nil)
	zoom := h.mapView.Zoom()
	s := NewSRSSession(h.coord, testCatalog, true)

	if err := s.SelectCode(context.Background(), "5514"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.coord.Position() != (domain.Coordinates{Lon: 14.42125, Lat: 50.08755}) {
		t.Fatalf("position moved to %v", h.coord.Position())
	}
	if h.mapView.Zoom() != zoom {
		t.Fatalf("zoom changed from %d to %d", zoom, h.mapView.Zoom())
	}
}

func TestSelectWithoutRecenter(t *testing.T) {
	h := newPageHarness(t, domain.IdentityCode, true, false)
	h.coord.Load(domain.Coordinates{Lon: -74, Lat: 40.7}, "", nil)
	s := NewSRSSession(h.coord, testCatalog, false)

	if err := s.SelectCode(context.Background(), "5514"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.coord.Position() != (domain.Coordinates{Lon: -74, Lat: 40.7}) {
		t.Fatalf("position moved to %v", h.coord.Position())
	}
}

func TestSelectUnknownCode(t *testing.T) {
	h := newPageHarness(t, domain.IdentityCode, true, false)
	h.coord.Load(domain.Coordinates{}, "", nil)
	s := NewSRSSession(h.coord, testCatalog, true)

	if err := s.SelectCode(context.Background(), "99999"); err != nil {
		t.Fatalf("unknown codes should still be selected, got %v", err)
	}
	if got := h.coord.SRS(); got.Code != "99999" || got.Name != "" {
		t.Fatalf("srs = %+v, want bare 99999", got)
	}
	if title, _, _ := h.page.SRSDetail(); title != "EPSG:99999" {
		t.Fatalf("title = %q", title)
	}
}

func TestSelectCatalogFailure(t *testing.T) {
	h := newPageHarness(t, domain.IdentityCode, true, false)
	h.coord.Load(domain.Coordinates{}, "", nil)
	boom := errors.New("database is locked")
	s := NewSRSSession(h.coord, mapCatalog{err: boom}, true)

	err := s.SelectCode(context.Background(), "5514")
	if !errors.Is(err, boom) {
		t.Fatalf("expected catalog error, got %v", err)
	}
	if h.coord.SRS().Code != "5514" {
		t.Fatalf("expected the code to be selected anyway, got %q", h.coord.SRS().Code)
	}
}

func TestSelectEmptyCode(t *testing.T) {
	h := newPageHarness(t, "5514", true, false)
	h.coord.Load(domain.Coordinates{}, "", nil)
	s := NewSRSSession(h.coord, testCatalog, true)

	if err := s.SelectCode(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty code")
	}
	if s.Select(domain.SRSSelection{}) {
		t.Fatalf("expected empty selection to be rejected")
	}
	if h.coord.SRS().Code != "5514" {
		t.Fatalf("srs changed to %q", h.coord.SRS().Code)
	}
}
