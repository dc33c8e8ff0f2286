package jismesh

import "fmt"

// Parent returns the enclosing cell at the next coarser level. ok is false
// for first-level codes. The fifth mesh parents directly to the base (third)
// mesh.
func (c Code) Parent() (Code, bool) {
	l := c.Level()
	p, ok := l.Parent()
	if !ok {
		return 0, false
	}
	f := l.parentFactor()
	row, col := c.rowCol()
	return newCode(p, row/f, col/f), true
}

// Children enumerates the cells of the next finer level nested in this cell,
// row-major (southernmost row first, west to east). Leaf levels return nil.
func (c Code) Children() []Code {
	l := c.Level()
	child, ok := l.Child()
	if !ok {
		return nil
	}
	f := l.subdivisionFactor()
	row, col := c.rowCol()
	out := make([]Code, 0, f*f)
	for dr := 0; dr < f; dr++ {
		for dc := 0; dc < f; dc++ {
			out = append(out, newCode(child, row*f+dr, col*f+dc))
		}
	}
	return out
}

// AtLevel converts the code to a coarser level by walking the parent chain.
// Converting toward a finer level on the chain fails with ErrCannotRefine:
// one coarse cell covers many fine cells, so there is no unique answer.
// Levels with no chain between them in either direction (the fifth mesh
// against any fourth variant) fail with ErrUnrelatedLevels.
func (c Code) AtLevel(target Level) (Code, error) {
	if !target.valid() {
		return 0, fmt.Errorf("invalid mesh level %d", uint8(target))
	}
	l := c.Level()
	switch {
	case target == l:
		return c, nil
	case l.coarsensTo(target):
		cur := c
		for cur.Level() != target {
			cur, _ = cur.Parent()
		}
		return cur, nil
	case target.coarsensTo(l):
		return 0, fmt.Errorf("%w: %s to %s", ErrCannotRefine, l, target)
	}
	return 0, fmt.Errorf("%w: %s to %s", ErrUnrelatedLevels, l, target)
}
