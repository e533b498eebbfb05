package turing

import (
	"testing"
)

func TestChecksumIgnoresFormatting(t *testing.T) {
	a := MustLoad("symbols 1\ntape t [1] 1\nresult t 1 1\n")
	b := MustLoad("/* fixtures */ SYMBOLS 1 tape   t\n\t[1]  1 // first\nResult t 1 1")
	if a.Checksum != b.Checksum {
		t.Fatalf("%d != %d", a.Checksum, b.Checksum)
	}
	want := ChecksumSeed + ContentHash([]string{"1", "1"}, 0) + 31*ContentHash([]string{"1", "1"}, 0)
	if a.Checksum != want {
		t.Fatalf("%d != %d", a.Checksum, want)
	}
}

func TestChecksumSeesEdits(t *testing.T) {
	base := MustLoad("symbols 1 0\ntape t [1] 0\nresult t 1 0\n").Checksum
	for _, src := range []string{
		"symbols 1 0\ntape t 1 [0]\nresult t 1 0\n",
		"symbols 1 0\ntape t [0] 1\nresult t 1 0\n",
		"symbols 1 0\ntape t [1] 0\nresult t 0 1\n",
		"symbols 1 0\ntape t [1] 0 -\nresult t 1 0\n",
		"symbols 1 0\ntape t [1] 0\nresult1 t 1\n",
		"symbols 1 0\ntape t [1] 0\n",
	} {
		if MustLoad(src).Checksum == base {
			t.Fatalf("same checksum for %q", src)
		}
	}
}

func TestChecksumNoFixtures(t *testing.T) {
	if p := MustLoad("states A"); p.Checksum != ChecksumSeed {
		t.Fatal(p.Checksum)
	}
}

func TestContentHashSeparatesSymbols(t *testing.T) {
	if ContentHash([]string{"ab", "c"}, 0) == ContentHash([]string{"a", "bc"}, 0) {
		t.Fatal("collision")
	}
}
