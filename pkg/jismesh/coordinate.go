package jismesh

import (
	"encoding/json"
	"fmt"
	"math"
)

// Covered geographic extent of the grid. Codes are defined only for cells
// that intersect this box.
const (
	MinLat = 20.0
	MaxLat = 46.0
	MinLon = 122.0
	MaxLon = 154.0

	// lonOriginDeg is the longitude reference of the first-level column
	// digits (column = lon - 100, two digits).
	lonOriginDeg = 100.0
)

// Coordinate is a validated latitude/longitude pair inside the covered
// extent. The zero value is not valid; use NewCoordinate.
type Coordinate struct {
	lat float64
	lon float64
}

// NewCoordinate validates lat/lon against the covered extent. Non-finite
// values and points outside the extent are rejected.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Coordinate{}, fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrOutOfRange, lat, lon)
	}
	if lat < MinLat || lat > MaxLat {
		return Coordinate{}, fmt.Errorf("%w: latitude %v not in [%v, %v]", ErrOutOfRange, lat, MinLat, MaxLat)
	}
	if lon < MinLon || lon > MaxLon {
		return Coordinate{}, fmt.Errorf("%w: longitude %v not in [%v, %v]", ErrOutOfRange, lon, MinLon, MaxLon)
	}
	return Coordinate{lat: lat, lon: lon}, nil
}

// Lat returns the latitude in degrees.
func (c Coordinate) Lat() float64 { return c.lat }

// Lon returns the longitude in degrees.
func (c Coordinate) Lon() float64 { return c.lon }

func (c Coordinate) String() string {
	return fmt.Sprintf("(%v, %v)", c.lat, c.lon)
}

type coordinateJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MarshalJSON implements json.Marshaler.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(coordinateJSON{Lat: c.lat, Lon: c.lon})
}

// UnmarshalJSON implements json.Unmarshaler. Decoded values pass through the
// same validation as NewCoordinate, so untrusted input cannot produce a
// coordinate outside the covered extent.
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	var raw coordinateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewCoordinate(raw.Lat, raw.Lon)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
