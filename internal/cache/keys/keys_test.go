package keys

import (
	"strings"
	"testing"

	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("roads", jismesh.LevelThird, "53394611", "status='open'")
	b := Key("roads", jismesh.LevelThird, "53394611", "status='open'")
	if a != b {
		t.Fatalf("same input produced different keys:\n%s\n%s", a, b)
	}
	if !strings.HasPrefix(a, "roads:third:53394611:") {
		t.Fatalf("unexpected key shape: %s", a)
	}
}

func TestKey_DistinguishesParts(t *testing.T) {
	base := Key("roads", jismesh.LevelThird, "53394611", "")
	cases := []string{
		Key("rivers", jismesh.LevelThird, "53394611", ""),
		Key("roads", jismesh.LevelSecond, "533946", ""),
		Key("roads", jismesh.LevelThird, "53394612", ""),
		Key("roads", jismesh.LevelThird, "53394611", "status='open'"),
	}
	for i, k := range cases {
		if k == base {
			t.Fatalf("case %d collides with base key %s", i, base)
		}
	}
}

func TestKey_NormalizesFilterSpelling(t *testing.T) {
	a := Key("roads", jismesh.LevelThird, "53394611", "status = 'open' AND lanes > 2")
	b := Key("roads", jismesh.LevelThird, "53394611", "status='open'  AND lanes>2")
	if a != b {
		t.Fatalf("equivalent filters produced different keys:\n%s\n%s", a, b)
	}
}

func TestKey_SanitizesUnsafeRunes(t *testing.T) {
	k := Key("my layer\t2", jismesh.LevelFirst, "5339", "name='café'")
	for _, r := range k {
		if r == ' ' || r == '\t' || r > 127 {
			t.Fatalf("unsafe rune %q in key %s", r, k)
		}
	}
}

func TestKey_TruncatesLongFilterText(t *testing.T) {
	long := strings.Repeat("a=1 AND ", 100)
	k := Key("roads", jismesh.LevelThird, "53394611", long)
	if len(k) > 300 {
		t.Fatalf("key too long (%d): %s", len(k), k)
	}
	// the hash still tells long filters apart
	k2 := Key("roads", jismesh.LevelThird, "53394611", long+"z=9")
	if k == k2 {
		t.Fatalf("distinct long filters collide")
	}
}
