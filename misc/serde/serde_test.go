package serde

import (
	"bytes"
	"reflect"
	"testing"
)

type roundTripTest struct {
	inputI  []int64
	inputS  []string
	inputF  []float64
	inputI3 [][]int32
	name    string
}

var roundTripTests = []roundTripTest{
	{
		inputI: []int64{3},
		name:   "1 int",
	},
	{
		inputI: []int64{3, 5, 1000001},
		name:   "3 ints",
	},
	{
		inputI: []int64{-1},
		name:   "negative int",
	},
	{
		inputI: []int64{3},
		inputS: []string{"a"},
		name:   "1+1 elements",
	},
	{
		inputS: []string{"", "b", "", "column name with spaces"},
		name:   "strings incl empty",
	},
	{
		inputF: []float64{0, -1.5, 3.14159, 1e-15},
		name:   "floats",
	},
	{
		inputI3: [][]int32{
			{0, -1, 2},
			{},
			{7},
		},
		name: "int32 slices",
	},
}

func Test_roundTrip(t *testing.T) {
	var b = new(bytes.Buffer)
	for _, test := range roundTripTests {
		b.Reset()
		for _, v := range test.inputI {
			if _, err := IntWriteTo(b, v); err != nil {
				t.Fatal(err)
			}
		}
		for _, v := range test.inputS {
			if _, err := StringWriteTo(b, v); err != nil {
				t.Fatal(err)
			}
		}
		for _, v := range test.inputF {
			if _, err := Float64WriteTo(b, v); err != nil {
				t.Fatal(err)
			}
		}
		for _, v := range test.inputI3 {
			if _, err := Int32SliceWriteTo(b, v); err != nil {
				t.Fatal(err)
			}
		}

		for _, v := range test.inputI {
			var r int64
			if _, err := IntReadFrom(&r, b); err != nil {
				t.Fatal(err)
			}
			if r != v {
				t.Fatalf("Test %v: expected %v, got %v", test.name, v, r)
			}
		}
		for _, v := range test.inputS {
			var r string
			if _, err := StringReadFrom(&r, b); err != nil {
				t.Fatal(err)
			}
			if r != v {
				t.Fatalf("Test %v: expected %v, got %v", test.name, v, r)
			}
		}
		for _, v := range test.inputF {
			var r float64
			if _, err := Float64ReadFrom(&r, b); err != nil {
				t.Fatal(err)
			}
			if r != v {
				t.Fatalf("Test %v: expected %v, got %v", test.name, v, r)
			}
		}
		for _, v := range test.inputI3 {
			var r []int32
			if _, err := Int32SliceReadFrom(&r, b); err != nil {
				t.Fatal(err)
			}
			if len(v) == 0 && len(r) == 0 {
				continue
			}
			if !reflect.DeepEqual(r, v) {
				t.Fatalf("Test %v: expected %v, got %v", test.name, v, r)
			}
		}
		if b.Len() != 0 {
			t.Fatalf("Test %v: %v bytes left unread", test.name, b.Len())
		}
	}
}

func Test_truncatedRead(t *testing.T) {
	var b = new(bytes.Buffer)
	if _, err := StringWriteTo(b, "abcdef"); err != nil {
		t.Fatal(err)
	}
	truncated := bytes.NewBuffer(b.Bytes()[:b.Len()-2])
	var r string
	if _, err := StringReadFrom(&r, truncated); err == nil {
		t.Fatal("expected error on truncated string payload")
	}
}
