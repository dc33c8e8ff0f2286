// Package mapper converts between geometric footprints and mesh cells.
package mapper

import (
	"github.com/uiuifree/go-jismeshcode/internal/core/model"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type Interface interface {
	CellsForBBox(bb model.BBox, level jismesh.Level) (model.Cells, error)
}
