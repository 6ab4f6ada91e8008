package domain

import (
	"math"
	"testing"
)

func TestCoordinatesInRange(t *testing.T) {
	cases := []struct {
		c    Coordinates
		want bool
	}{
		{Coordinates{Lon: 14.42125, Lat: 50.08755}, true},
		{Coordinates{Lon: -180, Lat: -90}, true},
		{Coordinates{Lon: 180.5, Lat: 0}, false},
		{Coordinates{Lon: 0, Lat: math.NaN()}, false},
		{Coordinates{Lon: math.Inf(1), Lat: 0}, false},
	}

	for _, tc := range cases {
		if got := tc.c.InRange(); got != tc.want {
			t.Errorf("InRange(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestIsIdentity(t *testing.T) {
	for _, code := range []string{"4326", " 4326 ", "EPSG:4326", "epsg:4326"} {
		if !IsIdentity(code) {
			t.Errorf("IsIdentity(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"", "3857", "43260", "5514"} {
		if IsIdentity(code) {
			t.Errorf("IsIdentity(%q) = true, want false", code)
		}
	}
}

func TestSRSTitleAndLink(t *testing.T) {
	s := SRS{Code: "5514", Name: "S-JTSK / Krovak East North"}
	if got, want := s.Title(), "EPSG:5514 S-JTSK / Krovak East North"; got != want {
		t.Fatalf("Title() = %q, want %q", got, want)
	}
	if got, want := s.DetailLink(), "/5514"; got != want {
		t.Fatalf("DetailLink() = %q, want %q", got, want)
	}
	if got, want := (SRS{Code: "27700"}).Title(), "EPSG:27700"; got != want {
		t.Fatalf("Title() without name = %q, want %q", got, want)
	}
}

func TestBoundFromNWSE(t *testing.T) {
	b := BoundFromNWSE([4]float64{51.06, 12.09, 47.73, 22.56})
	if b.Min[0] != 12.09 || b.Min[1] != 47.73 || b.Max[0] != 22.56 || b.Max[1] != 51.06 {
		t.Fatalf("BoundFromNWSE = %v", b)
	}
}
