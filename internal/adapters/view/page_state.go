// Package view holds what a page would show in its form fields, SRS
// heading and address bar. Page sessions render it into API snapshots.
package view

import (
	"epsg-map-service/internal/domain"
	"strconv"
)

// PageState implements the display ports and the hash sink in memory.
type PageState struct {
	lonLat    *domain.Coordinates
	eastNorth domain.EastNorth

	srsTitle   string
	srsLink    string
	srsVisible bool

	hash       string
	hashWrites int
}

func New() *PageState { return &PageState{} }

func (p *PageState) SetLonLat(pos *domain.Coordinates) {
	if pos == nil {
		p.lonLat = nil
		return
	}
	c := *pos
	p.lonLat = &c
}

// LonLat returns the degree fields, or false when they are blank.
func (p *PageState) LonLat() (domain.Coordinates, bool) {
	if p.lonLat == nil {
		return domain.Coordinates{}, false
	}
	return *p.lonLat, true
}

func (p *PageState) SetEastNorth(en domain.EastNorth) { p.eastNorth = en }

func (p *PageState) EastNorth() domain.EastNorth { return p.eastNorth }

func (p *PageState) SetSRSDetail(title, link string, visible bool) {
	p.srsTitle = title
	p.srsLink = link
	p.srsVisible = visible
}

// SRSDetail returns the heading, detail link and whether link and copy button are shown.
func (p *PageState) SRSDetail() (title, link string, visible bool) {
	return p.srsTitle, p.srsLink, p.srsVisible
}

func (p *PageState) WriteHash(fragment string) {
	p.hash = fragment
	p.hashWrites++
}

// Hash returns the last written fragment and how many writes happened.
func (p *PageState) Hash() (string, int) { return p.hash, p.hashWrites }

// CopyText is the clipboard payload: easting and northing separated by a tab.
func (p *PageState) CopyText() string {
	if p.eastNorth.Status != domain.EastNorthReady {
		return "\t"
	}
	return strconv.FormatFloat(p.eastNorth.X, 'f', -1, 64) + "\t" + strconv.FormatFloat(p.eastNorth.Y, 'f', -1, 64)
}
