package misc

import (
	"testing"
)

func Test_randomDeterminism(t *testing.T) {
	a := NewRandom(42)
	b := NewRandom(42)
	for i := 0; i < 1000; i++ {
		if a.NextInt(0, 7) != b.NextInt(0, 7) {
			t.Fatal("same seed produced different draws")
		}
	}
	sa := NewRandom(7).Sample(1000, 50)
	sb := NewRandom(7).Sample(1000, 50)
	if len(sa) != 50 || len(sb) != 50 {
		t.Fatalf("expected 50 indices, got %v and %v", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatal("same seed produced different samples")
		}
	}
}

func Test_sampleDistinctAscending(t *testing.T) {
	s := NewRandom(1).Sample(100, 100)
	if len(s) != 100 {
		t.Fatalf("expected all 100 indices, got %v", len(s))
	}
	for i := range s {
		if i > 0 && s[i] <= s[i-1] {
			t.Fatalf("indices not strictly ascending at #%v: %v", i, s)
		}
	}
	if s[0] != 0 || s[99] != 99 {
		t.Fatalf("k=n sample must cover the full range, got [%v..%v]", s[0], s[99])
	}
}

func Test_sampleClampsToN(t *testing.T) {
	s := NewRandom(1).Sample(5, 50)
	if len(s) != 5 {
		t.Fatalf("expected min(n,k)=5 indices, got %v", len(s))
	}
}
