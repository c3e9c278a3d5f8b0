package dsets

import (
	"bytes"
	"testing"
)

func buildPairs(bins map[int32]uint8) []RowBin {
	out := make([]RowBin, 0, len(bins))
	for row, bin := range bins {
		out = append(out, RowBin{Row: row, Bin: bin})
	}
	return out
}

func Test_denseBinRows(t *testing.T) {
	pairs := buildPairs(map[int32]uint8{0: 3, 1: 1, 2: 2, 3: 3, 4: 1})
	rows := BuildBinRows(5, pairs, 0, false)
	if _, ok := rows.(*denseBinRows); !ok {
		t.Fatalf("sparse disabled must yield dense storage, got %T", rows)
	}
	for row, want := range map[int32]uint8{0: 3, 1: 1, 2: 2, 3: 3, 4: 1} {
		if got := rows.Bin(row); got != want {
			t.Fatalf("row %v: expected bin %v, got %v", row, want, got)
		}
	}
}

func Test_sparseBinRows(t *testing.T) {
	pairs := buildPairs(map[int32]uint8{7: 2, 93: 5})
	rows := BuildBinRows(100, pairs, 0, true)
	if _, ok := rows.(*sparseBinRows); !ok {
		t.Fatalf("2%% occupancy must yield sparse storage, got %T", rows)
	}
	if rows.NonDefaultCount() != 2 {
		t.Fatalf("expected 2 stored cells, got %v", rows.NonDefaultCount())
	}
	if rows.Bin(7) != 2 || rows.Bin(93) != 5 {
		t.Fatal("stored bins lost")
	}
	if rows.Bin(50) != 0 {
		t.Fatalf("absent row must resolve to the default bin, got %v", rows.Bin(50))
	}
}

func Test_binRowsRoundTripAndReslice(t *testing.T) {
	type tCase struct {
		name         string
		enableSparse bool
	}
	tCases := []tCase{
		{name: "dense", enableSparse: false},
		{name: "sparse", enableSparse: true},
	}
	for _, tc := range tCases {
		pairs := buildPairs(map[int32]uint8{2: 4, 5: 1, 9: 3})
		rows := BuildBinRows(12, pairs, 0, tc.enableSparse)

		var b bytes.Buffer
		if _, err := rows.WriteTo(&b); err != nil {
			t.Fatalf("Test case %s: %v", tc.name, err)
		}
		restored, _, err := ReadBinRows(bytes.NewReader(b.Bytes()), nil)
		if err != nil {
			t.Fatalf("Test case %s: %v", tc.name, err)
		}
		for row := int32(0); row < 12; row++ {
			if restored.Bin(row) != rows.Bin(row) {
				t.Fatalf("Test case %s: row %v changed in round trip", tc.name, row)
			}
		}

		// keep global rows 2, 5, 6 as local rows 0, 1, 2
		resliced, _, err := ReadBinRows(bytes.NewReader(b.Bytes()), []int32{2, 5, 6})
		if err != nil {
			t.Fatalf("Test case %s: %v", tc.name, err)
		}
		if resliced.NumData() != 3 {
			t.Fatalf("Test case %s: expected 3 local rows, got %v", tc.name, resliced.NumData())
		}
		if resliced.Bin(0) != 4 || resliced.Bin(1) != 1 || resliced.Bin(2) != 0 {
			t.Fatalf("Test case %s: re-sliced bins wrong: %v %v %v",
				tc.name, resliced.Bin(0), resliced.Bin(1), resliced.Bin(2))
		}
	}
}

func Test_rowSet(t *testing.T) {
	rs := NewRowSet()
	for _, r := range []int32{5, 1, 9} {
		rs.Add(r)
	}
	if rs.Cardinality() != 3 {
		t.Fatalf("expected 3 rows, got %v", rs.Cardinality())
	}
	got := rs.ToSlice()
	for i, want := range []int32{1, 5, 9} {
		if got[i] != want {
			t.Fatalf("expected ascending %v, got %v", []int32{1, 5, 9}, got)
		}
	}
	var b bytes.Buffer
	if _, err := rs.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	restored := NewRowSet()
	if _, err := restored.ReadFrom(&b); err != nil {
		t.Fatal(err)
	}
	if !restored.Contains(5) || restored.Contains(4) {
		t.Fatal("restored row set differs")
	}
}

func Test_cardinalityEstimator(t *testing.T) {
	s := NewColumnCardinalityStorage()
	for i := 0; i < 1000; i++ {
		if err := s.Add(0, float64(i%10)); err != nil {
			t.Fatal(err)
		}
		if err := s.Add(1, float64(i)); err != nil {
			t.Fatal(err)
		}
	}
	n0, err := s.Cardinality(0)
	if err != nil {
		t.Fatal(err)
	}
	if n0 < 8 || n0 > 12 {
		t.Fatalf("column 0 estimate %v too far from 10", n0)
	}
	n1, err := s.Cardinality(1)
	if err != nil {
		t.Fatal(err)
	}
	if n1 < 900 || n1 > 1100 {
		t.Fatalf("column 1 estimate %v too far from 1000", n1)
	}
	if _, err = s.Cardinality(42); err == nil {
		t.Fatal("expected error for an unseen column")
	}
}
