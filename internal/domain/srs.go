package domain

import (
	"strings"

	"github.com/paulmach/orb"
)

// IdentityCode is the base geographic system. Positions in it need no transform.
const IdentityCode = "4326"

// SRS identifies the active spatial reference system.
type SRS struct {
	Code string
	Name string
}

// IsIdentity reports whether code denotes the base geographic system.
func IsIdentity(code string) bool {
	c := strings.TrimSpace(code)
	c = strings.TrimPrefix(strings.ToUpper(c), "EPSG:")
	return c == IdentityCode
}

// Title is the text shown in the SRS heading, e.g. "EPSG:5514 S-JTSK / Krovak East North".
func (s SRS) Title() string {
	t := "EPSG:" + s.Code
	if s.Name != "" {
		t += " " + s.Name
	}
	return t
}

// DetailLink is the relative link to the SRS detail page.
func (s SRS) DetailLink() string { return "/" + s.Code }

// SRSSelection is emitted by the SRS search when the user picks a system.
// BBox is the area of use in degrees, when known.
type SRSSelection struct {
	Code string
	Name string
	BBox *orb.Bound
}

// BoundFromNWSE converts an [n, w, s, e] area of use into an orb.Bound.
func BoundFromNWSE(nwse [4]float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{nwse[1], nwse[2]},
		Max: orb.Point{nwse[3], nwse[0]},
	}
}

// WorldNWSE is the default page extent.
var WorldNWSE = [4]float64{85, -180, -85, 180}
