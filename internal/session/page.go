// Package session runs page sessions: one map page per id, each driven by
// its own event loop.
package session

import (
	"context"
	"epsg-map-service/internal/adapters/mapview"
	"epsg-map-service/internal/adapters/view"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/hashcodec"
	"epsg-map-service/internal/platform/eventloop"
	"epsg-map-service/internal/platform/obs"
	"epsg-map-service/internal/ports"
	"epsg-map-service/internal/services"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrStaticPage   = errors.New("page has a fixed srs")
	ErrInvalidInput = errors.New("invalid input")
)

// PageParams are the page's construction parameters.
type PageParams struct {
	// SRS fixes the page to one system. Empty makes the page dynamic.
	SRS string
	// BBox is the initial extent as [n, w, s, e] degrees. Nil shows the world.
	BBox *[4]float64
	Lon  float64
	Lat  float64
	// Hash is the URL fragment the page was opened with.
	Hash string
}

// Options are shared by every page of a Store.
type Options struct {
	Provider ports.TransformProvider
	Catalog  ports.SRSCatalog
	// Limiter is shared so all pages together respect the remote rate limit.
	Limiter *rate.Limiter

	DebounceDelay       time.Duration
	DefaultLayer        string
	MapWidth            int
	MapHeight           int
	RecenterOnSRSChange bool

	// SessionTTL closes pages idle for longer. Zero keeps pages until deleted.
	SessionTTL time.Duration
	// MaxSessions caps running pages. Zero means no cap.
	MaxSessions int
}

// Page is one running map page.
type Page struct {
	id      string
	dynamic bool
	ctx     context.Context
	cancel  context.CancelFunc
	loop    *eventloop.Loop

	mapView *mapview.View
	state   *view.PageState
	coord   *services.Coordinator
	srs     *services.SRSSession

	// lastUsed is the unix nano time of the last store access.
	lastUsed atomic.Int64
}

// NewPage builds and loads a page. The returned page runs until Close.
func NewPage(id string, params PageParams, opts Options) (*Page, error) {
	if !(domain.Coordinates{Lon: params.Lon, Lat: params.Lat}).IsFinite() {
		return nil, fmt.Errorf("new page: %w: non-finite position (%v, %v)", ErrInvalidInput, params.Lon, params.Lat)
	}
	if opts.MapWidth <= 0 || opts.MapHeight <= 0 {
		opts.MapWidth, opts.MapHeight = 1024, 768
	}

	code := strings.TrimSpace(params.SRS)
	dynamic := code == ""
	if dynamic {
		code = domain.IdentityCode
	}

	nwse := domain.WorldNWSE
	if params.BBox != nil {
		nwse = *params.BBox
		if b := domain.BoundFromNWSE(nwse); b.Min[1] > b.Max[1] || b.Min[0] > b.Max[0] {
			return nil, fmt.Errorf("new page: %w: inverted bbox %v", ErrInvalidInput, nwse)
		}
	}

	ctx, cancel := context.WithCancel(obs.WithSession(context.Background(), id))
	p := &Page{
		id:      id,
		dynamic: dynamic,
		ctx:     ctx,
		cancel:  cancel,
		loop:    eventloop.New(64),
		state:   view.New(),
	}

	codec := hashcodec.New(dynamic, opts.DefaultLayer)
	start := domain.Coordinates{Lon: params.Lon, Lat: params.Lat}
	p.mapView = mapview.New(domain.ToWebMercator(start), mapview.DefaultZoom, opts.MapWidth, opts.MapHeight, codec.DefaultLayer)
	p.mapView.Fit(domain.WebMercatorBound(domain.BoundFromNWSE(nwse)))

	deps := services.CoordinatorDeps{
		Map:       p.mapView,
		Degrees:   p.state,
		EastNorth: p.state,
		Hash:      p.state,
		Gateway:   services.NewTransformGateway(opts.Provider, opts.Limiter, p.loop, eventloop.Go),
		Debounce:  services.NewDebounceScheduler(p.loop.Clock(), opts.DebounceDelay),
		Codec:     codec,
	}
	if dynamic {
		deps.SRSDetail = p.state
	}
	p.coord = services.NewCoordinator(ctx, domain.SRS{Code: code}, deps)
	if dynamic {
		p.srs = services.NewSRSSession(p.coord, opts.Catalog, opts.RecenterOnSRSChange)
	}

	p.loop.Start()
	err := p.loop.Do(ctx, func() {
		var selectSRS func(string)
		if p.srs != nil {
			selectSRS = func(code string) {
				if err := p.srs.SelectCode(ctx, code); err != nil {
					log.Printf("session=%s load srs=%s err=%v", id, code, err)
				}
			}
		}
		p.coord.Load(start, params.Hash, selectSRS)
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("new page: load: %w", err)
	}

	log.Printf("session=%s page created srs=%s dynamic=%v", id, code, dynamic)
	return p, nil
}

func (p *Page) ID() string { return p.id }

// Snapshot reads the page state on its loop.
func (p *Page) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := p.loop.Do(ctx, func() { snap = p.snapshot() })
	return snap, err
}

// Pan moves the map as a drag would.
func (p *Page) Pan(ctx context.Context, lon, lat float64) (Snapshot, error) {
	if !(domain.Coordinates{Lon: lon, Lat: lat}).IsFinite() {
		return Snapshot{}, fmt.Errorf("pan: %w: non-finite position (%v, %v)", ErrInvalidInput, lon, lat)
	}
	return p.do(ctx, func() error {
		p.mapView.SetCenter(domain.ToWebMercator(domain.Coordinates{Lon: lon, Lat: lat}))
		return nil
	})
}

// SetDegrees commits the lon/lat fields.
func (p *Page) SetDegrees(ctx context.Context, lon, lat float64) (Snapshot, error) {
	return p.do(ctx, func() error {
		if !p.coord.SetPositionFromDegreeFields(lon, lat) {
			return fmt.Errorf("set degrees: %w: non-finite position (%v, %v)", ErrInvalidInput, lon, lat)
		}
		p.state.SetLonLat(&domain.Coordinates{Lon: lon, Lat: lat})
		return nil
	})
}

// SetEastNorth commits the easting/northing fields. Non-numeric input is
// ignored and reported through the snapshot's Accepted flag.
func (p *Page) SetEastNorth(ctx context.Context, easting, northing string) (Snapshot, error) {
	var accepted bool
	snap, err := p.do(ctx, func() error {
		accepted = p.coord.SetPositionFromEastNorth(easting, northing, p.coord.SRS().Code)
		return nil
	})
	snap.Accepted = accepted
	return snap, err
}

// SelectSRS switches a dynamic page to code.
func (p *Page) SelectSRS(ctx context.Context, code string) (Snapshot, error) {
	if p.srs == nil {
		return Snapshot{}, ErrStaticPage
	}
	if strings.TrimSpace(code) == "" {
		return Snapshot{}, fmt.Errorf("select srs: %w: empty code", ErrInvalidInput)
	}
	return p.do(ctx, func() error {
		return p.srs.SelectCode(p.ctx, code)
	})
}

func (p *Page) SetLayer(ctx context.Context, layer string) (Snapshot, error) {
	return p.do(ctx, func() error {
		if !p.coord.SetMapLayer(layer) {
			return fmt.Errorf("set layer: %w: empty layer", ErrInvalidInput)
		}
		return nil
	})
}

func (p *Page) SetZoom(ctx context.Context, zoom int) (Snapshot, error) {
	return p.do(ctx, func() error {
		p.coord.SetZoom(zoom)
		return nil
	})
}

// Geocode moves the map to a geocoder result with the given [n, w, s, e] bbox.
func (p *Page) Geocode(ctx context.Context, nwse [4]float64) (Snapshot, error) {
	b := domain.BoundFromNWSE(nwse)
	if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
		return Snapshot{}, fmt.Errorf("geocode: %w: inverted bbox %v", ErrInvalidInput, nwse)
	}
	return p.do(ctx, func() error {
		p.coord.FitGeocoderResult(b)
		return nil
	})
}

func (p *Page) touch(t time.Time) { p.lastUsed.Store(t.UnixNano()) }

func (p *Page) idleSince() time.Time { return time.Unix(0, p.lastUsed.Load()) }

// Close stops the loop and cancels in-flight transforms.
func (p *Page) Close() {
	p.cancel()
	p.loop.Stop()
}

func (p *Page) do(ctx context.Context, fn func() error) (Snapshot, error) {
	var snap Snapshot
	var fnErr error
	err := p.loop.Do(ctx, func() {
		fnErr = fn()
		snap = p.snapshot()
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, fnErr
}

func (p *Page) snapshot() Snapshot {
	lonLat, shown := p.state.LonLat()
	title, link, visible := p.state.SRSDetail()
	hash, _ := p.state.Hash()

	snap := Snapshot{
		ID:        p.id,
		Dynamic:   p.dynamic,
		SRS:       p.coord.SRS(),
		Position:  p.coord.Position(),
		EastNorth: p.state.EastNorth(),
		Zoom:      p.mapView.Zoom(),
		Layer:     p.mapView.Layer(),
		Hash:      hash,
		CopyText:  p.state.CopyText(),
		Accepted:  true,

		SRSTitle:   title,
		SRSLink:    link,
		SRSVisible: visible,
	}
	if shown {
		snap.DegreeFields = &lonLat
	}
	return snap
}

// Snapshot is what the page shows at one instant.
type Snapshot struct {
	ID       string
	Dynamic  bool
	SRS      domain.SRS
	Position domain.Coordinates
	// DegreeFields is nil while the lon/lat fields are blank.
	DegreeFields *domain.Coordinates
	EastNorth    domain.EastNorth
	Zoom         int
	Layer        string
	Hash         string
	CopyText     string
	// Accepted is false when the last input was ignored.
	Accepted bool

	SRSTitle   string
	SRSLink    string
	SRSVisible bool
}
