// Package hashcodec converts the visible map state to and from the URL
// fragment, e.g. "srs=5514&lon=14.4212500&lat=50.0875500&z=12&layer=osm".
package hashcodec

import (
	"epsg-map-service/internal/domain"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DefaultLayer is the tile layer left out of encoded fragments.
const DefaultLayer = "mqosm"

// Codec encodes and decodes fragments for one page variant.
type Codec struct {
	// Dynamic pages carry the selected SRS in the fragment.
	Dynamic      bool
	DefaultLayer string
}

func New(dynamic bool, defaultLayer string) Codec {
	if defaultLayer == "" {
		defaultLayer = DefaultLayer
	}
	return Codec{Dynamic: dynamic, DefaultLayer: defaultLayer}
}

// Encode produces the fragment (without the leading '#'). Fields are emitted
// in the order srs, lon, lat, z, layer.
func (c Codec) Encode(s domain.HashState) string {
	parts := make([]string, 0, 5)
	if c.Dynamic {
		parts = append(parts, "srs="+url.QueryEscape(s.SRS))
	}
	parts = append(parts,
		"lon="+formatDegrees(s.Lon),
		"lat="+formatDegrees(s.Lat),
		"z="+strconv.Itoa(s.Zoom),
	)
	if s.Layer != "" && s.Layer != c.defaultLayer() {
		parts = append(parts, "layer="+url.QueryEscape(s.Layer))
	}
	return strings.Join(parts, "&")
}

// Decode parses a fragment, with or without the leading '#'. Missing or
// unparsable fields stay absent; Decode never fails.
func (c Codec) Decode(fragment string) domain.PartialHashState {
	fragment = strings.TrimPrefix(fragment, "#")

	// ParseQuery keeps every pair it could read even when it reports an error.
	qd, _ := url.ParseQuery(fragment)

	var out domain.PartialHashState
	if c.Dynamic {
		out.SRS = strings.TrimSpace(qd.Get("srs"))
	}
	out.Lon = parseFinite(qd.Get("lon"))
	out.Lat = parseFinite(qd.Get("lat"))
	if z := parseFinite(qd.Get("z")); z != nil {
		zoom := int(math.Trunc(math.Max(0, math.Min(*z, domain.MaxZoom))))
		out.Zoom = &zoom
	}
	out.Layer = strings.TrimSpace(qd.Get("layer"))
	return out
}

func (c Codec) defaultLayer() string {
	if c.DefaultLayer == "" {
		return DefaultLayer
	}
	return c.DefaultLayer
}

func formatDegrees(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', 7, 64)
}

func parseFinite(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
