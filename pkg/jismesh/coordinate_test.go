package jismesh

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNewCoordinate_Valid(t *testing.T) {
	c, err := NewCoordinate(35.6812, 139.7671)
	if err != nil {
		t.Fatalf("NewCoordinate: %v", err)
	}
	if c.Lat() != 35.6812 || c.Lon() != 139.7671 {
		t.Fatalf("accessors returned %v, %v", c.Lat(), c.Lon())
	}
}

func TestNewCoordinate_ExtentEdges(t *testing.T) {
	// Southwest-most covered point encodes at every level.
	corner, err := NewCoordinate(20.0, 122.0)
	if err != nil {
		t.Fatalf("extreme southwest corner rejected: %v", err)
	}
	for _, l := range Levels {
		code := FromCoordinate(corner, l)
		if !code.Contains(corner) {
			t.Fatalf("level %s: corner cell %s does not contain the corner", l, code)
		}
		if _, err := ParseCodeAtLevel(code.String(), l); err != nil {
			t.Fatalf("level %s: corner code %q unparseable: %v", l, code.String(), err)
		}
	}
	if _, err := NewCoordinate(46.0, 154.0); err != nil {
		t.Fatalf("extreme northeast corner rejected: %v", err)
	}
}

func TestNewCoordinate_Invalid(t *testing.T) {
	cases := []struct{ lat, lon float64 }{
		{19.999, 122.0},
		{46.001, 139.0},
		{35.0, 121.999},
		{35.0, 154.001},
		{0, 0},
		{91, 139},
		{math.NaN(), 139},
		{35, math.NaN()},
		{math.Inf(1), 139},
		{35, math.Inf(-1)},
	}
	for _, tc := range cases {
		if _, err := NewCoordinate(tc.lat, tc.lon); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("NewCoordinate(%v, %v): err=%v, want ErrOutOfRange", tc.lat, tc.lon, err)
		}
	}
}

func TestCoordinate_JSONRoundTrip(t *testing.T) {
	orig, _ := NewCoordinate(35.6812, 139.7671)
	b, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Coordinate
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != orig {
		t.Fatalf("round trip: %v -> %v", orig, back)
	}
}

func TestCoordinate_JSONRejectsOutOfRange(t *testing.T) {
	var c Coordinate
	err := json.Unmarshal([]byte(`{"lat":0,"lon":0}`), &c)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("unmarshal of out-of-range point: err=%v, want ErrOutOfRange", err)
	}
}

func TestBoundingBox_NormalizesCorners(t *testing.T) {
	a := mustCoord(t, 36.0, 140.0)
	b := mustCoord(t, 35.0, 139.0)
	bb := NewBoundingBox(a, b)
	if bb.MinLat() != 35.0 || bb.MaxLat() != 36.0 || bb.MinLon() != 139.0 || bb.MaxLon() != 140.0 {
		t.Fatalf("corners not normalized: %+v", bb)
	}
	if bb.SouthWest().Lat() != 35.0 || bb.NorthEast().Lon() != 140.0 {
		t.Fatalf("corner accessors wrong")
	}
}

func TestBoundingBox_ContainsAndCenter(t *testing.T) {
	bb := NewBoundingBox(mustCoord(t, 35.0, 139.0), mustCoord(t, 36.0, 140.0))

	if !bb.Contains(mustCoord(t, 35.5, 139.5)) {
		t.Fatalf("interior point not contained")
	}
	if !bb.Contains(mustCoord(t, 35.0, 139.0)) || !bb.Contains(mustCoord(t, 36.0, 140.0)) {
		t.Fatalf("edges must be inclusive")
	}
	if bb.Contains(mustCoord(t, 36.5, 139.5)) {
		t.Fatalf("point north of box contained")
	}

	center := bb.Center()
	if center.Lat() != 35.5 || center.Lon() != 139.5 {
		t.Fatalf("center = %v", center)
	}
}
