package jismesh

import "testing"

func TestLevel_CodeLengths(t *testing.T) {
	want := map[Level]int{
		LevelFirst:         4,
		LevelSecond:        6,
		LevelThird:         8,
		LevelFourthHalf:    9,
		LevelFourthQuarter: 10,
		LevelFourthEighth:  11,
		LevelFifth:         10,
	}
	for l, n := range want {
		if got := l.CodeLength(); got != n {
			t.Fatalf("%s: code length %d want %d", l, got, n)
		}
	}
}

func TestLevel_AngularSizes(t *testing.T) {
	if !approx(LevelFirst.LatSizeDegrees(), 40.0/60.0) {
		t.Fatalf("first lat size %v", LevelFirst.LatSizeDegrees())
	}
	if !approx(LevelFirst.LonSizeDegrees(), 1.0) {
		t.Fatalf("first lon size %v", LevelFirst.LonSizeDegrees())
	}
	if !approx(LevelThird.LatSizeDegrees(), 30.0/3600.0) {
		t.Fatalf("third lat size %v", LevelThird.LatSizeDegrees())
	}
	if !approx(LevelFifth.LonSizeDegrees(), 4.5/3600.0) {
		t.Fatalf("fifth lon size %v", LevelFifth.LonSizeDegrees())
	}

	// Each level's size must evenly subdivide its parent's.
	factors := map[Level]float64{
		LevelSecond:        8,
		LevelThird:         10,
		LevelFourthHalf:    2,
		LevelFourthQuarter: 2,
		LevelFourthEighth:  2,
		LevelFifth:         10,
	}
	for l, f := range factors {
		p, ok := l.Parent()
		if !ok {
			t.Fatalf("%s: no parent", l)
		}
		if !approx(p.LatSizeDegrees(), l.LatSizeDegrees()*f) {
			t.Fatalf("%s: lat size not a 1/%v of parent", l, f)
		}
		if !approx(p.LonSizeDegrees(), l.LonSizeDegrees()*f) {
			t.Fatalf("%s: lon size not a 1/%v of parent", l, f)
		}
	}
}

func TestLevel_ParentChild(t *testing.T) {
	if _, ok := LevelFirst.Parent(); ok {
		t.Fatalf("first level must have no parent")
	}
	if !LevelFirst.IsCoarsest() {
		t.Fatalf("first level must be coarsest")
	}
	parents := map[Level]Level{
		LevelFourthHalf:    LevelThird,
		LevelFourthQuarter: LevelFourthHalf,
		LevelFourthEighth:  LevelFourthQuarter,
		LevelFifth:         LevelThird,
	}
	for l, want := range parents {
		p, ok := l.Parent()
		if !ok || p != want {
			t.Fatalf("%s: parent = %v, want %s", l, p, want)
		}
	}
	if c, ok := LevelThird.Child(); !ok || c != LevelFourthHalf {
		t.Fatalf("third child = %v", c)
	}
	if _, ok := LevelFifth.Child(); ok {
		t.Fatalf("fifth level must be a leaf")
	}
	if !LevelFifth.IsFinest() || !LevelFourthEighth.IsFinest() {
		t.Fatalf("leaf predicates wrong")
	}
}

func TestLevel_ApproxSizeMeters(t *testing.T) {
	// Documentation constants; just pin the table.
	want := map[Level]float64{
		LevelFirst:         80000,
		LevelSecond:        10000,
		LevelThird:         1000,
		LevelFourthHalf:    500,
		LevelFourthQuarter: 250,
		LevelFourthEighth:  125,
		LevelFifth:         100,
	}
	for l, m := range want {
		if l.ApproxSizeMeters() != m {
			t.Fatalf("%s: %v meters, want %v", l, l.ApproxSizeMeters(), m)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, l := range Levels {
		got, err := ParseLevel(l.String())
		if err != nil || got != l {
			t.Fatalf("ParseLevel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if got, err := ParseLevel("  Third "); err != nil || got != LevelThird {
		t.Fatalf("ParseLevel with spacing = %v, %v", got, err)
	}
	if _, err := ParseLevel("tenth"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
