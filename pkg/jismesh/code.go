package jismesh

import (
	"errors"
	"fmt"
	"math"
)

// Code is a grid square code packed into a single integer: the level tag in
// the top byte, then the global row and column index at that level's
// resolution. Rows count northward from the equator, columns eastward from
// the 100°E reference meridian. Codes are cheap to copy, compare and use as
// map keys.
type Code uint64

const (
	rowShift = 28
	idxMask  = 1<<rowShift - 1
)

func newCode(l Level, row, col int) Code {
	return Code(uint64(l)<<56 | uint64(row)<<rowShift | uint64(col))
}

// Level returns the subdivision level of the code.
func (c Code) Level() Level {
	return Level(c >> 56)
}

func (c Code) rowCol() (row, col int) {
	return int(c >> rowShift & idxMask), int(c & idxMask)
}

// Index bounds of the covered extent at a level. The multiplications below
// are exact: the extent edges times every cells-per-degree table entry land
// on representable integers.
func rowRange(l Level) (lo, hi int) {
	k := latCellsPerDeg[l-1]
	return int(math.Floor(MinLat * k)), int(math.Floor(MaxLat * k))
}

func colRange(l Level) (lo, hi int) {
	k := lonCellsPerDeg[l-1]
	return int(math.Floor((MinLon - lonOriginDeg) * k)), int(math.Floor((MaxLon - lonOriginDeg) * k))
}

// FromCoordinate returns the code of the cell containing the coordinate at
// the given level. Truncation is toward the southwest corner, so every point
// of a cell maps to the same code. Total for any validated Coordinate.
func FromCoordinate(coord Coordinate, l Level) Code {
	row := int(math.Floor(coord.lat * latCellsPerDeg[l-1]))
	col := int(math.Floor((coord.lon - lonOriginDeg) * lonCellsPerDeg[l-1]))
	return newCode(l, row, col)
}

// ParseCode parses a canonical digit string. The level is inferred from the
// digit count. Ten-digit codes are ambiguous between the quarter mesh and the
// fifth mesh; the coarser quarter interpretation wins, falling back to fifth
// when the trailing index is not a valid quarter index. Use ParseCodeAtLevel
// to force one reading.
func ParseCode(s string) (Code, error) {
	switch len(s) {
	case 4:
		return ParseCodeAtLevel(s, LevelFirst)
	case 6:
		return ParseCodeAtLevel(s, LevelSecond)
	case 8:
		return ParseCodeAtLevel(s, LevelThird)
	case 9:
		return ParseCodeAtLevel(s, LevelFourthHalf)
	case 10:
		code, err := ParseCodeAtLevel(s, LevelFourthQuarter)
		if errors.Is(err, ErrInvalidDigit) {
			return ParseCodeAtLevel(s, LevelFifth)
		}
		return code, err
	case 11:
		return ParseCodeAtLevel(s, LevelFourthEighth)
	}
	return 0, fmt.Errorf("%w: %d digits in %q", ErrInvalidLength, len(s), s)
}

// ParseCodeAtLevel parses a digit string as a code of the given level.
func ParseCodeAtLevel(s string, l Level) (Code, error) {
	if !l.valid() {
		return 0, fmt.Errorf("invalid mesh level %d", uint8(l))
	}
	if len(s) != l.CodeLength() {
		return 0, fmt.Errorf("%w: level %s needs %d digits, got %d", ErrInvalidLength, l, l.CodeLength(), len(s))
	}
	d := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidDigit, s[i], i)
		}
		d[i] = int(s[i] - '0')
	}

	// First-level pair: two row digits, two column digits.
	row := d[0]*10 + d[1]
	col := d[2]*10 + d[3]

	if l >= LevelSecond {
		if d[4] > 7 || d[5] > 7 {
			return 0, fmt.Errorf("%w: secondary offsets %d%d must be 0..7", ErrInvalidDigit, d[4], d[5])
		}
		row = row*8 + d[4]
		col = col*8 + d[5]
	}
	if l >= LevelThird {
		row = row*10 + d[6]
		col = col*10 + d[7]
	}

	switch l {
	case LevelFourthHalf:
		q := d[8]
		if q < 1 || q > 4 {
			return 0, fmt.Errorf("%w: quadrant digit %d must be 1..4", ErrInvalidDigit, q)
		}
		// 1=NE 2=SE 3=NW 4=SW within the base cell.
		row = row*2 + 1 - (q-1)%2
		col = col*2 + 1 - (q-1)/2
	case LevelFourthQuarter:
		idx := d[8]*10 + d[9]
		if idx < 1 || idx > 16 {
			return 0, fmt.Errorf("%w: quarter index %02d must be 01..16", ErrInvalidDigit, idx)
		}
		row = row*4 + (idx-1)/4
		col = col*4 + (idx-1)%4
	case LevelFourthEighth:
		idx := d[8]*100 + d[9]*10 + d[10]
		if idx < 1 || idx > 64 {
			return 0, fmt.Errorf("%w: eighth index %03d must be 001..064", ErrInvalidDigit, idx)
		}
		row = row*8 + (idx-1)/8
		col = col*8 + (idx-1)%8
	case LevelFifth:
		row = row*10 + d[8]
		col = col*10 + d[9]
	}

	if rLo, rHi := rowRange(l); row < rLo || row > rHi {
		return 0, fmt.Errorf("%w: code %s decodes outside the covered latitudes", ErrOutOfRange, s)
	}
	if cLo, cHi := colRange(l); col < cLo || col > cHi {
		return 0, fmt.Errorf("%w: code %s decodes outside the covered longitudes", ErrOutOfRange, s)
	}
	return newCode(l, row, col), nil
}

// String returns the canonical fixed-length digit string. It is the exact
// inverse of ParseCodeAtLevel for the code's level.
func (c Code) String() string {
	l := c.Level()
	row, col := c.rowCol()
	return digitString(l, row, col)
}

func digitString(l Level, row, col int) string {
	switch l {
	case LevelFirst:
		return fmt.Sprintf("%02d%02d", row, col)
	case LevelSecond:
		return fmt.Sprintf("%s%d%d", digitString(LevelFirst, row/8, col/8), row%8, col%8)
	case LevelThird:
		return fmt.Sprintf("%s%d%d", digitString(LevelSecond, row/10, col/10), row%10, col%10)
	case LevelFourthHalf:
		q := 1 + (1-row%2) + (1-col%2)*2
		return fmt.Sprintf("%s%d", digitString(LevelThird, row/2, col/2), q)
	case LevelFourthQuarter:
		idx := (row%4)*4 + col%4 + 1
		return fmt.Sprintf("%s%02d", digitString(LevelThird, row/4, col/4), idx)
	case LevelFourthEighth:
		idx := (row%8)*8 + col%8 + 1
		return fmt.Sprintf("%s%03d", digitString(LevelThird, row/8, col/8), idx)
	case LevelFifth:
		return fmt.Sprintf("%s%d%d", digitString(LevelThird, row/10, col/10), row%10, col%10)
	}
	return ""
}

// Bounds returns the cell rectangle. The southwest corner is exactly
// row/col times the cell size; cells at the extent edge can reach slightly
// past the covered box.
func (c Code) Bounds() BoundingBox {
	l := c.Level()
	row, col := c.rowCol()
	latK := latCellsPerDeg[l-1]
	lonK := lonCellsPerDeg[l-1]
	sw := Coordinate{
		lat: float64(row) / latK,
		lon: lonOriginDeg + float64(col)/lonK,
	}
	ne := Coordinate{
		lat: float64(row+1) / latK,
		lon: lonOriginDeg + float64(col+1)/lonK,
	}
	return BoundingBox{sw: sw, ne: ne}
}

// Center returns the midpoint of the cell.
func (c Code) Center() Coordinate {
	return c.Bounds().Center()
}

// Contains reports whether the coordinate lies inside the cell.
func (c Code) Contains(coord Coordinate) bool {
	return c.Bounds().Contains(coord)
}

// MarshalText implements encoding.TextMarshaler using the canonical digit
// string.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Ten-digit input follows
// the ParseCode disambiguation rule.
func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
