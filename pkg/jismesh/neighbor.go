package jismesh

// Neighbor returns the adjacent cell in the given direction at the same
// level. ok is false when the neighbor would fall outside the covered
// extent.
func (c Code) Neighbor(d Direction) (Code, bool) {
	l := c.Level()
	dRow, dCol := d.Offset()
	row, col := c.rowCol()
	row += dRow
	col += dCol
	if lo, hi := rowRange(l); row < lo || row > hi {
		return 0, false
	}
	if lo, hi := colRange(l); col < lo || col > hi {
		return 0, false
	}
	return newCode(l, row, col), true
}

// Neighbors returns the existing adjacent cells in the fixed order N, NE, E,
// SE, S, SW, W, NW, skipping directions that leave the covered extent.
func (c Code) Neighbors() []Code {
	out := make([]Code, 0, len(Directions))
	for _, d := range Directions {
		if n, ok := c.Neighbor(d); ok {
			out = append(out, n)
		}
	}
	return out
}
