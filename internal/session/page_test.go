package session

import (
	"context"
	"epsg-map-service/internal/adapters/transform"
	"epsg-map-service/internal/domain"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

type staticCatalog map[string]domain.SRSSelection

func (c staticCatalog) Lookup(ctx context.Context, code string) (domain.SRSSelection, error) {
	sel, ok := c[code]
	if !ok {
		return domain.SRSSelection{}, fmt.Errorf("lookup %q: %w", code, domain.ErrSRSNotFound)
	}
	return sel, nil
}

func testOptions(provider *transform.MockTransformProvider) Options {
	return Options{
		Provider:      provider,
		Catalog:       staticCatalog{"5514": {Code: "5514", Name: "S-JTSK / Krovak East North"}},
		DebounceDelay: 10 * time.Millisecond,
		MapWidth:      1024,
		MapHeight:     768,
	}
}

// waitFor polls the page until cond holds or a second has passed.
func waitFor(t *testing.T, p *Page, cond func(Snapshot) bool) Snapshot {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for {
		snap, err := p.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, last snapshot %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPageLoadsFromHash(t *testing.T) {
	provider := transform.NewMockTransformProvider(nil)
	p, err := NewPage("p1", PageParams{SRS: "5514", Hash: "#lon=14.4212500&lat=50.0875500&z=12&layer=osm"}, testOptions(provider))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Position != (domain.Coordinates{Lon: 14.42125, Lat: 50.08755}) {
		t.Fatalf("position = %v", snap.Position)
	}
	if snap.Zoom != 12 || snap.Layer != "osm" {
		t.Fatalf("zoom/layer = %d/%q, want 12/osm", snap.Zoom, snap.Layer)
	}
	if snap.Hash != "" {
		t.Fatalf("expected no hash written during load, got %q", snap.Hash)
	}
	if snap.Dynamic {
		t.Fatalf("expected a static page")
	}

	snap = waitFor(t, p, func(s Snapshot) bool { return s.EastNorth.Status == domain.EastNorthReady })
	if math.Abs(snap.EastNorth.X-1014.42125) > 1e-9 || math.Abs(snap.EastNorth.Y-2050.08755) > 1e-9 {
		t.Fatalf("east/north = %+v", snap.EastNorth)
	}
	if len(provider.Calls()) != 1 {
		t.Fatalf("expected 1 transform call, got %d", len(provider.Calls()))
	}
}

func TestPagePanAndEastNorth(t *testing.T) {
	provider := transform.NewMockTransformProvider(nil)
	p, err := NewPage("p2", PageParams{SRS: "3857", Lon: 10, Lat: 10}, testOptions(provider))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	snap, err := p.Pan(context.Background(), 12.5, 41.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(snap.Hash, "lon=12.5000000&lat=41.9000000&z=") {
		t.Fatalf("unexpected hash %q", snap.Hash)
	}
	if snap.EastNorth.Status != domain.EastNorthPending {
		t.Fatalf("expected pending east/north right after pan, got %v", snap.EastNorth.Status)
	}

	snap, err = p.SetEastNorth(context.Background(), "1020", "2045")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Accepted || snap.DegreeFields != nil {
		t.Fatalf("expected accepted input with blank degree fields, got %+v", snap)
	}

	snap = waitFor(t, p, func(s Snapshot) bool { return s.DegreeFields != nil })
	if snap.Position != (domain.Coordinates{Lon: 20, Lat: 45}) {
		t.Fatalf("position = %v, want (20, 45)", snap.Position)
	}
	if snap.CopyText != "1020\t2045" {
		t.Fatalf("copy text = %q", snap.CopyText)
	}

	snap, err = p.SetEastNorth(context.Background(), "abc", "2045")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Accepted {
		t.Fatalf("expected non-numeric input to be ignored")
	}
}

func TestPageSelectSRS(t *testing.T) {
	provider := transform.NewMockTransformProvider(nil)
	p, err := NewPage("p3", PageParams{Lon: 14.42125, Lat: 50.08755}, testOptions(provider))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	snap, err := p.SelectSRS(context.Background(), "5514")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(snap.Hash, "srs=5514&lon=14.4212500&lat=50.0875500&z=") {
		t.Fatalf("unexpected hash %q", snap.Hash)
	}
	if snap.SRSTitle != "EPSG:5514 S-JTSK / Krovak East North" || snap.SRSLink != "/5514" || !snap.SRSVisible {
		t.Fatalf("srs detail = %q %q %v", snap.SRSTitle, snap.SRSLink, snap.SRSVisible)
	}

	static, err := NewPage("p4", PageParams{SRS: "5514"}, testOptions(provider))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer static.Close()
	if _, err := static.SelectSRS(context.Background(), "2056"); !errors.Is(err, ErrStaticPage) {
		t.Fatalf("expected ErrStaticPage, got %v", err)
	}
}

func TestPageDynamicHashSelectsSRS(t *testing.T) {
	provider := transform.NewMockTransformProvider(nil)
	p, err := NewPage("p5", PageParams{Hash: "srs=5514&lon=14&lat=50&z=9"}, testOptions(provider))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SRS.Code != "5514" || snap.SRS.Name == "" {
		t.Fatalf("srs = %+v", snap.SRS)
	}
	if snap.Zoom != 9 {
		t.Fatalf("zoom = %d, want 9", snap.Zoom)
	}
}

func TestPageRejectsBadInput(t *testing.T) {
	provider := transform.NewMockTransformProvider(nil)
	if _, err := NewPage("bad", PageParams{Lon: math.Inf(1)}, testOptions(provider)); err == nil {
		t.Fatalf("expected error for infinite longitude")
	}

	p, err := NewPage("p6", PageParams{SRS: "5514"}, testOptions(provider))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	if _, err := p.SetLayer(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty layer")
	}
	if _, err := p.Geocode(context.Background(), [4]float64{40, 10, 45, 12}); err == nil {
		t.Fatalf("expected error for inverted bbox")
	}
}

func TestClosedPage(t *testing.T) {
	p, err := NewPage("p7", PageParams{SRS: "5514"}, testOptions(transform.NewMockTransformProvider(nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Close()

	if _, err := p.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error from a closed page")
	}
}

func TestPageRecentersOnSRSChangeWhenEnabled(t *testing.T) {
	bbox := domain.BoundFromNWSE([4]float64{51.06, 12.09, 47.73, 22.56})
	opts := testOptions(transform.NewMockTransformProvider(nil))
	opts.Catalog = staticCatalog{"5514": {Code: "5514", Name: "S-JTSK / Krovak East North", BBox: &bbox}}
	opts.RecenterOnSRSChange = true

	p, err := NewPage("p8", PageParams{Lon: -74, Lat: 40.7}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	snap, err := p.SelectSRS(context.Background(), "5514")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bbox.Contains(orb.Point{snap.Position.Lon, snap.Position.Lat}) {
		t.Fatalf("position %v is outside the area of use", snap.Position)
	}
}
