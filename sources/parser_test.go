package sources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_createParserDetection(t *testing.T) {
	type tCase struct {
		name   string
		line   string
		expect interface{}
	}
	tCases := []tCase{
		{name: "csv", line: "1,2,3,0", expect: &delimitedParser{}},
		{name: "tsv", line: "1\t2\t3\t0", expect: &delimitedParser{}},
		{name: "libsvm", line: "1 0:0.5 3:1.25", expect: &libsvmParser{}},
		{name: "single column", line: "0.5", expect: &delimitedParser{}},
	}
	for _, tc := range tCases {
		got := CreateParser(tc.line, 0)
		require.NotNilf(t, got, "Test case %s", tc.name)
		require.IsTypef(t, tc.expect, got, "Test case %s", tc.name)
	}
	require.Nil(t, CreateParser("not;a;format", 0), "unrecognized format must yield nil")
}

func Test_delimitedParserLabelShift(t *testing.T) {
	p := &delimitedParser{sep: ",", labelIdx: 2}
	var out []ColumnValue
	var label float64
	err := p.ParseOneLine("10,20,99,30", &out, &label)
	require.NoError(t, err)
	require.Equal(t, 99.0, label)
	require.Len(t, out, 3)
	// columns before the label keep their index, columns after shift down
	require.Equal(t, ColumnValue{Column: 0, Value: 10}, out[0])
	require.Equal(t, ColumnValue{Column: 1, Value: 20}, out[1])
	require.Equal(t, ColumnValue{Column: 2, Value: 30}, out[2])
}

func Test_delimitedParserEmptyCell(t *testing.T) {
	p := &delimitedParser{sep: ",", labelIdx: 0}
	var out []ColumnValue
	var label float64
	err := p.ParseOneLine("1,,3", &out, &label)
	require.NoError(t, err)
	require.Equal(t, 1.0, label)
	require.Equal(t, []ColumnValue{{Column: 0, Value: 0}, {Column: 1, Value: 3}}, out)
}

func Test_delimitedParserRejectsGarbage(t *testing.T) {
	p := &delimitedParser{sep: ",", labelIdx: 0}
	var out []ColumnValue
	var label float64
	require.Error(t, p.ParseOneLine("1,abc,3", &out, &label))
}

func Test_libsvmParser(t *testing.T) {
	p := &libsvmParser{}
	var out []ColumnValue
	var label float64
	err := p.ParseOneLine("1 0:0.5 4:2 7:-1.25", &out, &label)
	require.NoError(t, err)
	require.Equal(t, 1.0, label)
	require.Equal(t, []ColumnValue{
		{Column: 0, Value: 0.5},
		{Column: 4, Value: 2},
		{Column: 7, Value: -1.25},
	}, out)

	require.Error(t, p.ParseOneLine("1 borked", &out, &label))
}
