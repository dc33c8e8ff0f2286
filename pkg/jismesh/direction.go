package jismesh

import "fmt"

// Direction is one of the 8 compass directions used for neighbor lookup.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Directions lists all directions in the order Neighbors visits them.
var Directions = [8]Direction{
	North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest,
}

var directionNames = [8]string{
	"north", "north-east", "east", "south-east",
	"south", "south-west", "west", "north-west",
}

// Offset returns the fixed (row delta, column delta) of the direction. Rows
// grow northward, columns eastward.
func (d Direction) Offset() (dRow, dCol int) {
	switch d {
	case North:
		return 1, 0
	case NorthEast:
		return 1, 1
	case East:
		return 0, 1
	case SouthEast:
		return -1, 1
	case South:
		return -1, 0
	case SouthWest:
		return -1, -1
	case West:
		return 0, -1
	case NorthWest:
		return 1, -1
	}
	return 0, 0
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return Direction((uint8(d) + 4) % 8)
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}
