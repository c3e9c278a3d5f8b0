package dsets

import (
	"io"

	"github.com/RoaringBitmap/roaring"
)

type roaringRowSet struct {
	s *roaring.Bitmap
}

func NewRowSet() IRowSet {
	return &roaringRowSet{
		s: roaring.NewBitmap(),
	}
}

func NewRowSetOf(rows []int32) IRowSet {
	rs := &roaringRowSet{
		s: roaring.NewBitmap(),
	}
	for _, r := range rows {
		rs.s.Add(uint32(r))
	}
	return rs
}

func (rs *roaringRowSet) Add(row int32) {
	rs.s.Add(uint32(row))
}

func (rs *roaringRowSet) Contains(row int32) bool {
	return rs.s.Contains(uint32(row))
}

func (rs *roaringRowSet) Cardinality() uint64 {
	return rs.s.GetCardinality()
}

func (rs *roaringRowSet) ToSlice() []int32 {
	out := make([]int32, 0, rs.s.GetCardinality())
	it := rs.s.Iterator()
	for it.HasNext() {
		out = append(out, int32(it.Next()))
	}
	return out
}

func (rs *roaringRowSet) rank(row int32) uint64 {
	return rs.s.Rank(uint32(row))
}

func (rs *roaringRowSet) WriteTo(w io.Writer) (int64, error) {
	return rs.s.WriteTo(w)
}

func (rs *roaringRowSet) ReadFrom(r io.Reader) (int64, error) {
	if rs.s == nil {
		rs.s = roaring.NewBitmap()
	}
	return rs.s.ReadFrom(r)
}
