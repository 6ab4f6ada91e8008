package services

import (
	"context"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/hashcodec"
	"epsg-map-service/internal/ports"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// GeocoderZoom is used when a geocoder result is too small to fit.
const GeocoderZoom = 15

// geocoderMinArea is the bbox area, in square degrees, below which a
// geocoder result is treated as a point.
const geocoderMinArea = 1e-5

// updateOrigin names the surface a position update came from. It decides
// which displays are refreshed and whether a forward transform is needed.
type updateOrigin int

const (
	originMap updateOrigin = iota
	originDegrees
	originEastNorth
	// originLateInverse is an inverse result that arrived after the position
	// or SRS changed again; it needs a fresh forward like a map move.
	originLateInverse
)

// CoordinatorDeps are the surfaces a Coordinator keeps in sync.
type CoordinatorDeps struct {
	Map       ports.MapView
	Degrees   ports.DegreeDisplay
	EastNorth ports.EastNorthDisplay
	Hash      ports.HashSink
	// SRSDetail is only set on dynamic pages.
	SRSDetail ports.SRSDetailView

	Gateway  *TransformGateway
	Debounce *DebounceScheduler
	Codec    hashcodec.Codec
}

// Coordinator owns the canonical position of one page and propagates every
// change to the map, the coordinate fields and the URL fragment. All methods
// must be called from the page's event loop.
type Coordinator struct {
	ctx context.Context
	CoordinatorDeps

	position domain.Coordinates
	srs      domain.SRS

	// updating guards against the map echoing our own recenter back to us.
	updating bool
	// loading suppresses hash writes while the page is being constructed.
	loading bool

	forwardSeq uint64
	inverseSeq uint64
	// changeSeq counts position and SRS changes not caused by an inverse result.
	changeSeq uint64
}

func NewCoordinator(ctx context.Context, srs domain.SRS, deps CoordinatorDeps) *Coordinator {
	return &Coordinator{
		ctx:             ctx,
		CoordinatorDeps: deps,
		srs:             srs,
		loading:         true,
	}
}

func (c *Coordinator) Position() domain.Coordinates { return c.position }

func (c *Coordinator) SRS() domain.SRS { return c.srs }

// Load runs page construction: the initial position, the map subscription,
// then any state carried in the URL fragment. No hash is written until it
// returns. selectSRS resolves a srs carried by a dynamic page's fragment.
func (c *Coordinator) Load(initial domain.Coordinates, fragment string, selectSRS func(code string)) {
	c.loading = true
	defer func() { c.loading = false }()

	c.updatePosition(initial, originMap)
	c.Map.OnCenterChanged(c.onMapCenter)

	st := c.Codec.Decode(fragment)
	if c.Codec.Dynamic && st.SRS != "" && selectSRS != nil {
		selectSRS(st.SRS)
	}
	if pos, ok := st.Position(); ok {
		c.updatePosition(pos, originMap)
	}
	if st.Zoom != nil {
		c.Map.SetZoom(*st.Zoom)
	}
	if st.Layer != "" {
		c.Map.SetLayer(st.Layer)
	}
}

func (c *Coordinator) onMapCenter(center orb.Point) {
	pos := domain.FromWebMercator(center)
	c.SetPositionFromMap(pos.Lon, pos.Lat)
}

// SetPositionFromMap handles a pan or drag of the map.
func (c *Coordinator) SetPositionFromMap(lon, lat float64) {
	c.updatePosition(domain.Coordinates{Lon: lon, Lat: lat}, originMap)
}

// SetPositionFromDegreeFields handles a value committed in the lon/lat fields.
// The fields themselves are left as the user typed them.
func (c *Coordinator) SetPositionFromDegreeFields(lon, lat float64) bool {
	pos := domain.Coordinates{Lon: lon, Lat: lat}
	if !pos.IsFinite() {
		return false
	}
	c.updatePosition(pos, originDegrees)
	return true
}

// SetPositionFromEastNorth handles values typed into the easting/northing
// fields. Non-numeric input is ignored and false is returned. Otherwise the
// typed values stay on screen, the degree fields are blanked and an inverse
// transform is issued; its result moves the position without a forward echo.
func (c *Coordinator) SetPositionFromEastNorth(easting, northing, srs string) bool {
	east, ok := parseCoordinate(easting)
	if !ok {
		return false
	}
	north, ok := parseCoordinate(northing)
	if !ok {
		return false
	}
	if strings.TrimSpace(srs) == "" {
		srs = c.srs.Code
	}

	// Typed values win over any forward transform still pending or in flight.
	c.Debounce.Cancel()
	c.forwardSeq++

	c.EastNorth.SetEastNorth(domain.ReadyEastNorth(east, north))
	c.Degrees.SetLonLat(nil)

	c.inverseSeq++
	seq := c.inverseSeq
	submitted := c.changeSeq
	c.Gateway.RequestInverse(c.ctx, east, north, srs, func(pos domain.Coordinates, err error) {
		if seq != c.inverseSeq {
			log.Printf("coordinator: drop stale inverse seq=%d current=%d", seq, c.inverseSeq)
			return
		}
		if err != nil {
			log.Printf("coordinator: inverse transform failed srs=%s x=%v y=%v err=%v", srs, east, north, err)
			return
		}
		if !pos.IsFinite() {
			log.Printf("coordinator: inverse transform returned non-finite position %v", pos)
			return
		}
		origin := originEastNorth
		if c.changeSeq != submitted {
			log.Printf("coordinator: inverse result arrived after newer edits, re-running forward srs=%s", c.srs.Code)
			origin = originLateInverse
		}
		c.updatePosition(pos, origin)
	})
	return true
}

// SetActiveSRS switches the target system and schedules a fresh forward transform.
func (c *Coordinator) SetActiveSRS(code, name string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	c.srs = domain.SRS{Code: code, Name: name}
	c.changeSeq++

	if c.SRSDetail != nil {
		c.SRSDetail.SetSRSDetail(c.srs.Title(), c.srs.DetailLink(), true)
	}
	c.scheduleForward()
	c.writeHash()
	return true
}

// RecenterOn fits the map to bbox (degrees) when the current center lies outside it.
func (c *Coordinator) RecenterOn(bbox orb.Bound) bool {
	if bbox.Min[0] > bbox.Max[0] || bbox.Min[1] > bbox.Max[1] {
		// Areas crossing the antimeridian are left alone.
		return false
	}
	extent := domain.WebMercatorBound(bbox)
	if extent.Contains(c.Map.Center()) {
		return false
	}
	c.Map.Fit(extent)
	return true
}

// SetMapLayer changes the base layer and records it in the fragment.
func (c *Coordinator) SetMapLayer(layer string) bool {
	layer = strings.TrimSpace(layer)
	if layer == "" {
		return false
	}
	c.Map.SetLayer(layer)
	c.writeHash()
	return true
}

func (c *Coordinator) SetZoom(zoom int) {
	c.Map.SetZoom(zoom)
	c.writeHash()
}

// FitGeocoderResult moves the map to a geocoder hit given in degrees. Large
// areas are fitted; small ones are centered at a fixed zoom.
func (c *Coordinator) FitGeocoderResult(bbox orb.Bound) {
	w := bbox.Max[0] - bbox.Min[0]
	h := bbox.Max[1] - bbox.Min[1]
	if w*h > geocoderMinArea {
		c.Map.Fit(domain.WebMercatorBound(bbox))
		return
	}
	c.Map.SetZoom(GeocoderZoom)
	c.Map.SetCenter(domain.ToWebMercator(domain.Coordinates{Lon: bbox.Center()[0], Lat: bbox.Center()[1]}))
}

// HashState is the current fragment content.
func (c *Coordinator) HashState() domain.HashState {
	return domain.HashState{
		SRS:   c.srs.Code,
		Lon:   c.position.Lon,
		Lat:   c.position.Lat,
		Zoom:  c.Map.Zoom(),
		Layer: c.Map.Layer(),
	}
}

func (c *Coordinator) updatePosition(pos domain.Coordinates, origin updateOrigin) {
	if c.updating {
		return
	}
	c.applyPosition(pos, origin)
	c.writeHash()
}

func (c *Coordinator) applyPosition(pos domain.Coordinates, origin updateOrigin) {
	c.updating = true
	defer func() { c.updating = false }()

	c.position = pos
	if origin != originDegrees {
		c.Degrees.SetLonLat(&pos)
	}
	if origin == originEastNorth {
		c.Debounce.Cancel()
		c.forwardSeq++
	} else {
		if origin != originLateInverse {
			c.changeSeq++
		}
		c.scheduleForward()
	}
	c.Map.SetCenter(domain.ToWebMercator(pos))
}

// scheduleForward blanks the easting/northing fields and arms the debounced
// forward transform. The transform reads position and SRS when it fires.
// Forward results still in flight describe an older state and are dropped.
func (c *Coordinator) scheduleForward() {
	c.forwardSeq++
	c.EastNorth.SetEastNorth(domain.PendingEastNorth())
	c.Debounce.Schedule(c.fireForward)
}

func (c *Coordinator) fireForward() {
	c.forwardSeq++
	seq := c.forwardSeq
	pos, srs := c.position, c.srs.Code

	c.Gateway.RequestForward(c.ctx, pos, srs, func(east, north float64, err error) {
		if seq != c.forwardSeq {
			log.Printf("coordinator: drop stale forward seq=%d current=%d", seq, c.forwardSeq)
			return
		}
		if err != nil {
			log.Printf("coordinator: forward transform failed srs=%s lon=%v lat=%v err=%v", srs, pos.Lon, pos.Lat, err)
			return
		}
		if !(domain.Coordinates{Lon: east, Lat: north}).IsFinite() {
			log.Printf("coordinator: forward transform returned non-finite result srs=%s x=%v y=%v", srs, east, north)
			return
		}
		c.EastNorth.SetEastNorth(domain.ReadyEastNorth(east, north))
	})
}

func (c *Coordinator) writeHash() {
	if c.loading {
		return
	}
	c.Hash.WriteHash(c.Codec.Encode(c.HashState()))
}

func parseCoordinate(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
