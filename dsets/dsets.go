package dsets

import (
	"io"
)

// RowBin is one discretized cell: the local row number and its bin id.
type RowBin struct {
	Row int32
	Bin uint8
}

type IBinRows interface {
	Bin(row int32) uint8
	NumData() int32
	NonDefaultCount() int32
	io.WriterTo
}

type IRowSet interface {
	Add(row int32)
	Contains(row int32) bool
	Cardinality() uint64
	ToSlice() []int32
	io.WriterTo
	io.ReaderFrom
}
