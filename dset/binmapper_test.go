package dset

import (
	"math"
	"testing"
)

func Test_findBinFewDistinct(t *testing.T) {
	m := &BinMapper{}
	m.FindBin([]float64{1, 4, 7, 4, 1}, 5, 16)
	if m.IsTrivial() {
		t.Fatal("three distinct values must not be trivial")
	}
	if m.NumBin() != 3 {
		t.Fatalf("expected 3 bins, got %v", m.NumBin())
	}
	type pair struct {
		value float64
		bin   uint8
	}
	for _, p := range []pair{
		{1, 0}, {2, 0}, {4, 1}, {5, 1}, {7, 2}, {100, 2},
	} {
		if got := m.ValueToBin(p.value); got != p.bin {
			t.Fatalf("ValueToBin(%v): expected %v, got %v", p.value, p.bin, got)
		}
	}
}

func Test_findBinZerosCount(t *testing.T) {
	// two of five sampled cells are zeros: zero becomes its own value
	m := &BinMapper{}
	m.FindBin([]float64{2, 2, 5}, 5, 16)
	if m.NumBin() != 3 {
		t.Fatalf("expected bins for {0, 2, 5}, got %v", m.NumBin())
	}
	if m.ValueToBin(0) == m.ValueToBin(2) {
		t.Fatal("zero and 2 must land in different bins")
	}
}

func Test_findBinTrivial(t *testing.T) {
	m := &BinMapper{}
	m.FindBin([]float64{5, 5, 5, 5}, 4, 16)
	if !m.IsTrivial() {
		t.Fatal("single-valued sample must be trivial")
	}
}

func Test_findBinCapsAtMaxBin(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = float64(i + 1)
	}
	m := &BinMapper{}
	m.FindBin(values, len(values), 16)
	if m.NumBin() > 16 {
		t.Fatalf("bin count %v exceeds max_bin 16", m.NumBin())
	}
	if m.NumBin() < 2 {
		t.Fatalf("bin count %v is degenerate", m.NumBin())
	}
	// bounds must be strictly increasing and admit every value
	prev := math.Inf(-1)
	for _, b := range m.upperBounds {
		if b <= prev {
			t.Fatalf("bounds not increasing: %v after %v", b, prev)
		}
		prev = b
	}
	last := uint8(0)
	for _, v := range values {
		bin := m.ValueToBin(v)
		if bin < last {
			t.Fatalf("bins not monotone over sorted values")
		}
		last = bin
	}
}

func Test_copyToCopyFromRoundTrip(t *testing.T) {
	const maxBin = 32
	m := &BinMapper{}
	m.FindBin([]float64{1.5, -2.25, 7, 9, 9, 11.125}, 8, maxBin)
	buf := make([]byte, SizeForSpecificBin(maxBin))
	m.CopyTo(buf)
	restored := &BinMapper{}
	restored.CopyFrom(buf)
	if restored.NumBin() != m.NumBin() {
		t.Fatalf("bin count: expected %v, got %v", m.NumBin(), restored.NumBin())
	}
	if restored.IsTrivial() != m.IsTrivial() {
		t.Fatal("trivial flag lost in round trip")
	}
	if len(restored.upperBounds) != len(m.upperBounds) {
		t.Fatalf("bound count: expected %v, got %v", len(m.upperBounds), len(restored.upperBounds))
	}
	for i := range m.upperBounds {
		if restored.upperBounds[i] != m.upperBounds[i] {
			t.Fatalf("bound #%v: expected %v, got %v", i, m.upperBounds[i], restored.upperBounds[i])
		}
	}
}

func Test_findBinDeterminism(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	a := &BinMapper{}
	a.FindBin(append([]float64(nil), values...), len(values), 8)
	b := &BinMapper{}
	b.FindBin(append([]float64(nil), values...), len(values), 8)
	if a.NumBin() != b.NumBin() {
		t.Fatal("same sample produced different bin counts")
	}
	for i := range a.upperBounds {
		if a.upperBounds[i] != b.upperBounds[i] {
			t.Fatal("same sample produced different bounds")
		}
	}
}
