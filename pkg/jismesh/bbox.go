package jismesh

import (
	"encoding/json"
	"fmt"
	"math"
)

// BoundingBox is an axis-aligned lat/lon rectangle held as its southwest and
// northeast corners.
type BoundingBox struct {
	sw Coordinate
	ne Coordinate
}

// NewBoundingBox builds a box from two opposite corners in either order; the
// corners are normalized so that sw <= ne componentwise.
func NewBoundingBox(a, b Coordinate) BoundingBox {
	minLat, maxLat := a.lat, b.lat
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	minLon, maxLon := a.lon, b.lon
	if minLon > maxLon {
		minLon, maxLon = maxLon, minLon
	}
	return BoundingBox{
		sw: Coordinate{lat: minLat, lon: minLon},
		ne: Coordinate{lat: maxLat, lon: maxLon},
	}
}

// SouthWest returns the southwest corner.
func (b BoundingBox) SouthWest() Coordinate { return b.sw }

// NorthEast returns the northeast corner.
func (b BoundingBox) NorthEast() Coordinate { return b.ne }

func (b BoundingBox) MinLat() float64 { return b.sw.lat }
func (b BoundingBox) MaxLat() float64 { return b.ne.lat }
func (b BoundingBox) MinLon() float64 { return b.sw.lon }
func (b BoundingBox) MaxLon() float64 { return b.ne.lon }

// Contains reports whether the coordinate lies inside the box, edges
// included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.lat >= b.sw.lat && c.lat <= b.ne.lat &&
		c.lon >= b.sw.lon && c.lon <= b.ne.lon
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		lat: (b.sw.lat + b.ne.lat) / 2,
		lon: (b.sw.lon + b.ne.lon) / 2,
	}
}

type boundingBoxJSON struct {
	SouthWest coordinateJSON `json:"south_west"`
	NorthEast coordinateJSON `json:"north_east"`
}

// MarshalJSON implements json.Marshaler. Cell bounds can extend slightly past
// the covered extent at the grid edge, so corners are emitted as raw pairs
// rather than validated coordinates.
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(boundingBoxJSON{
		SouthWest: coordinateJSON{Lat: b.sw.lat, Lon: b.sw.lon},
		NorthEast: coordinateJSON{Lat: b.ne.lat, Lon: b.ne.lon},
	})
}

// UnmarshalJSON implements json.Unmarshaler. Corners are normalized the way
// NewBoundingBox does; non-finite values are rejected, but the extent is not
// enforced for the same edge-cell reason as MarshalJSON.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var raw boundingBoxJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, v := range [4]float64{raw.SouthWest.Lat, raw.SouthWest.Lon, raw.NorthEast.Lat, raw.NorthEast.Lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bounding box corner", ErrOutOfRange)
		}
	}
	*b = NewBoundingBox(
		Coordinate{lat: raw.SouthWest.Lat, lon: raw.SouthWest.Lon},
		Coordinate{lat: raw.NorthEast.Lat, lon: raw.NorthEast.Lon},
	)
	return nil
}
