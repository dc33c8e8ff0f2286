package meshmapper

import (
	"fmt"
	"sort"

	"github.com/uiuifree/go-jismeshcode/internal/core/model"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

// ToParent coarsens the cell to the requested level along the parent chain.
func (m *Mapper) ToParent(cell string, level jismesh.Level) (string, error) {
	c, err := jismesh.ParseCode(cell)
	if err != nil {
		return "", fmt.Errorf("parse cell: %w", err)
	}
	p, err := c.AtLevel(level)
	if err != nil {
		return "", fmt.Errorf("coarsen %s: %w", cell, err)
	}
	return p.String(), nil
}

// ToChildren returns the cells of the next finer level nested in the cell,
// sorted. Leaf-level cells yield an empty list.
func (m *Mapper) ToChildren(cell string) (model.Cells, error) {
	c, err := jismesh.ParseCode(cell)
	if err != nil {
		return nil, fmt.Errorf("parse cell: %w", err)
	}
	kids := c.Children()
	out := make([]string, 0, len(kids))
	for _, k := range kids {
		out = append(out, k.String())
	}
	// row-major is not lexical for the half-mesh quadrant digit
	sort.Strings(out)
	return out, nil
}

// Neighbors returns the edge and corner adjacent cells in fixed N, NE, E, SE,
// S, SW, W, NW order. Cells past the covered extent are skipped.
func (m *Mapper) Neighbors(cell string) (model.Cells, error) {
	c, err := jismesh.ParseCode(cell)
	if err != nil {
		return nil, fmt.Errorf("parse cell: %w", err)
	}
	ns := c.Neighbors()
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.String())
	}
	return out, nil
}
