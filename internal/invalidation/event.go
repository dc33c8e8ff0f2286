// Package invalidation defines the cache invalidation event contract.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Layer   string    `json:"layer"`
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
	BBox    *BBox     `json:"bbox"`
}

type BBox struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	SRID string  `json:"srid"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Layer) == "" {
		return fmt.Errorf("layer is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	if e.BBox == nil {
		return fmt.Errorf("bbox is required")
	}
	bb := *e.BBox
	if bb.SRID != "EPSG:4326" {
		return fmt.Errorf("bbox.srid must be EPSG:4326")
	}
	if !(bb.X1 >= -180 && bb.X1 <= 180 && bb.X2 >= -180 && bb.X2 <= 180) {
		return fmt.Errorf("bbox longitude out of range")
	}
	if !(bb.Y1 >= -90 && bb.Y1 <= 90 && bb.Y2 >= -90 && bb.Y2 <= 90) {
		return fmt.Errorf("bbox latitude out of range")
	}
	if !(bb.X2 > bb.X1 && bb.Y2 > bb.Y1) {
		return fmt.Errorf("bbox must satisfy x2>x1 and y2>y1")
	}
	return nil
}
