package jismesh

import "math"

// Iterator lazily walks the cells of a level covering a bounding box in
// row-major order (southernmost row first, west to east). It is a pure
// cursor over its inputs: two iterators over the same box yield the same
// codes in the same order, and Reset rewinds to the start.
type Iterator struct {
	level        Level
	rowLo, rowHi int
	colLo, colHi int
	row, col     int
}

// CodesInBBox returns an iterator over every cell at the level whose bounds
// intersect the box. Both corners are inclusive: a corner exactly on a cell
// boundary still yields that cell.
func CodesInBBox(bb BoundingBox, l Level) *Iterator {
	latK := latCellsPerDeg[l-1]
	lonK := lonCellsPerDeg[l-1]

	rowLo := int(math.Floor(bb.sw.lat * latK))
	rowHi := int(math.Floor(bb.ne.lat * latK))
	colLo := int(math.Floor((bb.sw.lon - lonOriginDeg) * lonK))
	colHi := int(math.Floor((bb.ne.lon - lonOriginDeg) * lonK))

	// Clamp to the representable grid; boxes that poke past the extent edge
	// enumerate only the covered cells.
	if lo, hi := rowRange(l); true {
		rowLo = max(rowLo, lo)
		rowHi = min(rowHi, hi)
	}
	if lo, hi := colRange(l); true {
		colLo = max(colLo, lo)
		colHi = min(colHi, hi)
	}

	it := &Iterator{
		level: l,
		rowLo: rowLo, rowHi: rowHi,
		colLo: colLo, colHi: colHi,
	}
	it.Reset()
	return it
}

// Next returns the next code, or ok=false once the range is exhausted.
func (it *Iterator) Next() (Code, bool) {
	if it.row > it.rowHi || it.colLo > it.colHi {
		return 0, false
	}
	code := newCode(it.level, it.row, it.col)
	it.col++
	if it.col > it.colHi {
		it.col = it.colLo
		it.row++
	}
	return code, true
}

// Reset rewinds the cursor to the first cell.
func (it *Iterator) Reset() {
	it.row = it.rowLo
	it.col = it.colLo
}

// Count returns the total number of cells the iterator yields from a fresh
// cursor, without consuming it.
func (it *Iterator) Count() int {
	rows := it.rowHi - it.rowLo + 1
	cols := it.colHi - it.colLo + 1
	if rows <= 0 || cols <= 0 {
		return 0
	}
	return rows * cols
}

// Collect drains the iterator from its current position into a slice.
func (it *Iterator) Collect() []Code {
	out := make([]Code, 0, it.Count())
	for {
		code, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, code)
	}
}
