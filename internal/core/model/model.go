// Package model defines core domain types shared across the service.
package model

import (
	"fmt"

	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
	SRID   string
}

// String representation matching the wfs/wms bbox query format
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s", b.X1, b.Y1, b.X2, b.Y2, b.SRID)
}

type Cells []string

type QueryRequest struct {
	Layer   string
	BBox    *BBox
	Level   jismesh.Level
	Filters string
}
