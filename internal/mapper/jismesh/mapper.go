package meshmapper

import (
	"errors"
	"fmt"
	"sort"

	"github.com/uiuifree/go-jismeshcode/internal/core/model"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type Mapper struct{}

func New() *Mapper { return &Mapper{} }

// CellsForBBox returns the codes of every cell at the given level that
// intersects the bbox (lon,lat in EPSG:4326). The part of the bbox outside the
// covered extent is clipped away; a bbox entirely outside yields no cells.
func (m *Mapper) CellsForBBox(bb model.BBox, level jismesh.Level) (model.Cells, error) {
	if bb.X2 <= bb.X1 || bb.Y2 <= bb.Y1 {
		return nil, errors.New("bbox must satisfy x2>x1 and y2>y1")
	}

	x1, y1 := clampLon(bb.X1), clampLat(bb.Y1)
	x2, y2 := clampLon(bb.X2), clampLat(bb.Y2)
	if x2 <= x1 || y2 <= y1 {
		return model.Cells{}, nil
	}

	sw, err := jismesh.NewCoordinate(y1, x1)
	if err != nil {
		return nil, fmt.Errorf("bbox southwest: %w", err)
	}
	ne, err := jismesh.NewCoordinate(y2, x2)
	if err != nil {
		return nil, fmt.Errorf("bbox northeast: %w", err)
	}

	it := jismesh.CodesInBBox(jismesh.NewBoundingBox(sw, ne), level)
	out := make([]string, 0, it.Count())
	for {
		code, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, code.String())
	}
	// enumeration order is row-major, not lexical; sort for determinism
	sort.Strings(out)
	return out, nil
}

func clampLat(v float64) float64 {
	if v < jismesh.MinLat {
		return jismesh.MinLat
	}
	if v > jismesh.MaxLat {
		return jismesh.MaxLat
	}
	return v
}

func clampLon(v float64) float64 {
	if v < jismesh.MinLon {
		return jismesh.MinLon
	}
	if v > jismesh.MaxLon {
		return jismesh.MaxLon
	}
	return v
}
