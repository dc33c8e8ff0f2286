package jismesh

import (
	"fmt"
	"strings"
)

// Level identifies one of the seven JIS X 0410 subdivision levels. Larger
// values are finer cells.
type Level uint8

const (
	// LevelFirst is the primary mesh, roughly 80km per side (4 digits).
	LevelFirst Level = iota + 1
	// LevelSecond is the secondary mesh, roughly 10km per side (6 digits).
	LevelSecond
	// LevelThird is the base mesh, roughly 1km per side (8 digits).
	LevelThird
	// LevelFourthHalf is the half mesh, roughly 500m per side (9 digits).
	LevelFourthHalf
	// LevelFourthQuarter is the quarter mesh, roughly 250m per side (10 digits).
	LevelFourthQuarter
	// LevelFourthEighth is the eighth mesh, roughly 125m per side (11 digits).
	LevelFourthEighth
	// LevelFifth subdivides the base mesh 10x10, roughly 100m per side (10 digits).
	LevelFifth
)

// Levels lists every level from coarsest to finest.
var Levels = [7]Level{
	LevelFirst, LevelSecond, LevelThird,
	LevelFourthHalf, LevelFourthQuarter, LevelFourthEighth,
	LevelFifth,
}

// Cells per degree, indexed by Level-1. Both axes share the subdivision
// factors (8, 10, then 2/4/8 for the fourth variants and 10 for fifth), so
// the tables differ only in the first-level density.
var (
	latCellsPerDeg = [7]float64{1.5, 12, 120, 240, 480, 960, 1200}
	lonCellsPerDeg = [7]float64{1, 8, 80, 160, 320, 640, 800}
)

var levelNames = [7]string{
	"first", "second", "third", "fourth-half", "fourth-quarter",
	"fourth-eighth", "fifth",
}

// ParseLevel reads a level from its textual name as used in config and
// query parameters.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if name == n {
			return Level(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown mesh level %q", s)
}

func (l Level) valid() bool {
	return l >= LevelFirst && l <= LevelFifth
}

func (l Level) String() string {
	if !l.valid() {
		return fmt.Sprintf("level(%d)", uint8(l))
	}
	return levelNames[l-1]
}

// CodeLength returns the digit count of the canonical string form.
func (l Level) CodeLength() int {
	switch l {
	case LevelFirst:
		return 4
	case LevelSecond:
		return 6
	case LevelThird:
		return 8
	case LevelFourthHalf:
		return 9
	case LevelFourthQuarter:
		return 10
	case LevelFourthEighth:
		return 11
	case LevelFifth:
		return 10
	}
	return 0
}

// LatSizeDegrees returns the cell height in degrees.
func (l Level) LatSizeDegrees() float64 { return 1 / latCellsPerDeg[l-1] }

// LonSizeDegrees returns the cell width in degrees.
func (l Level) LonSizeDegrees() float64 { return 1 / lonCellsPerDeg[l-1] }

// ApproxSizeMeters returns the nominal linear cell size at mid-latitude.
// Documentation value only; no conversion arithmetic depends on it.
func (l Level) ApproxSizeMeters() float64 {
	switch l {
	case LevelFirst:
		return 80000
	case LevelSecond:
		return 10000
	case LevelThird:
		return 1000
	case LevelFourthHalf:
		return 500
	case LevelFourthQuarter:
		return 250
	case LevelFourthEighth:
		return 125
	case LevelFifth:
		return 100
	}
	return 0
}

// Parent returns the next coarser level. The fourth variants chain through
// each other down to the base (third) mesh; the fifth mesh parents straight
// to the base mesh. ok is false for LevelFirst.
func (l Level) Parent() (parent Level, ok bool) {
	switch l {
	case LevelSecond:
		return LevelFirst, true
	case LevelThird:
		return LevelSecond, true
	case LevelFourthHalf:
		return LevelThird, true
	case LevelFourthQuarter:
		return LevelFourthHalf, true
	case LevelFourthEighth:
		return LevelFourthQuarter, true
	case LevelFifth:
		return LevelThird, true
	}
	return 0, false
}

// Child returns the next finer level along the subdivision chain. The eighth
// mesh and the fifth mesh are leaves.
func (l Level) Child() (child Level, ok bool) {
	switch l {
	case LevelFirst:
		return LevelSecond, true
	case LevelSecond:
		return LevelThird, true
	case LevelThird:
		return LevelFourthHalf, true
	case LevelFourthHalf:
		return LevelFourthQuarter, true
	case LevelFourthQuarter:
		return LevelFourthEighth, true
	}
	return 0, false
}

// coarsensTo reports whether target is reachable from l by Parent steps.
func (l Level) coarsensTo(target Level) bool {
	for cur := l; ; {
		p, ok := cur.Parent()
		if !ok {
			return false
		}
		if p == target {
			return true
		}
		cur = p
	}
}

// IsCoarsest reports whether the level has no parent.
func (l Level) IsCoarsest() bool { return l == LevelFirst }

// IsFinest reports whether the level has no children.
func (l Level) IsFinest() bool {
	return l == LevelFourthEighth || l == LevelFifth
}

// subdivisionFactor is the per-axis cell count of one child step.
func (l Level) subdivisionFactor() int {
	switch l {
	case LevelFirst:
		return 8
	case LevelSecond:
		return 10
	case LevelThird, LevelFourthHalf, LevelFourthQuarter:
		return 2
	}
	return 0
}

// parentFactor is the per-axis ratio between this level and its parent.
func (l Level) parentFactor() int {
	switch l {
	case LevelSecond:
		return 8
	case LevelThird:
		return 10
	case LevelFourthHalf, LevelFourthQuarter, LevelFourthEighth:
		return 2
	case LevelFifth:
		return 10
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("marshal mesh level: invalid value %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
