package jismesh

import "errors"

// Sentinel errors returned by the codec. Callers match with errors.Is;
// wrapped messages carry the offending input.
var (
	// ErrOutOfRange reports a coordinate outside the covered extent
	// (lat 20..46, lon 122..154) or a decoded cell outside the grid.
	ErrOutOfRange = errors.New("out of covered range")

	// ErrInvalidLength reports a code string whose length matches no level.
	ErrInvalidLength = errors.New("invalid code length")

	// ErrInvalidDigit reports a non-digit character or a digit outside its
	// group's valid range (e.g. a half-mesh quadrant digit outside 1..4).
	ErrInvalidDigit = errors.New("invalid digit")

	// ErrCannotRefine reports a level conversion toward a finer level.
	ErrCannotRefine = errors.New("cannot convert to finer level")

	// ErrUnrelatedLevels reports a level conversion between levels that do
	// not share a parent chain (e.g. Fifth to FourthHalf).
	ErrUnrelatedLevels = errors.New("levels are not on a common chain")
)
