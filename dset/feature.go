package dset

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/dsets"
	"github.com/ovlad32/gbdata/misc/serde"
)

// Feature is one used column of the Dataset: its BinMapper plus the
// discretized value of every local row.
type Feature struct {
	featureIndex int32
	numData      int32
	enableSparse bool
	binMapper    *BinMapper
	defaultBin   uint8
	pushBuffers  [][]dsets.RowBin
	rows         dsets.IBinRows
}

// NewFeature takes ownership of the given BinMapper. numThreads sizes the
// per-thread push buffers; PushData with tid in [0, numThreads) is safe to
// call concurrently.
func NewFeature(featureIndex int, binMapper *BinMapper, numData int32, enableSparse bool, numThreads int) *Feature {
	if numThreads < 1 {
		numThreads = 1
	}
	return &Feature{
		featureIndex: int32(featureIndex),
		numData:      numData,
		enableSparse: enableSparse,
		binMapper:    binMapper,
		defaultBin:   binMapper.ValueToBin(0),
		pushBuffers:  make([][]dsets.RowBin, numThreads),
	}
}

// PushData discretizes value and records it for the given local row.
// Rows never pushed resolve to the zero-value bin.
func (f *Feature) PushData(tid int, row int32, value float64) {
	bin := f.binMapper.ValueToBin(value)
	if bin == f.defaultBin {
		return
	}
	f.pushBuffers[tid] = append(f.pushBuffers[tid], dsets.RowBin{Row: row, Bin: bin})
}

// FinishLoad merges the per-thread buffers into the final row storage.
// Not safe to call concurrently with PushData.
func (f *Feature) FinishLoad() {
	total := 0
	for i := range f.pushBuffers {
		total += len(f.pushBuffers[i])
	}
	pairs := make([]dsets.RowBin, 0, total)
	for i := range f.pushBuffers {
		pairs = append(pairs, f.pushBuffers[i]...)
		f.pushBuffers[i] = nil
	}
	f.pushBuffers = nil
	f.rows = dsets.BuildBinRows(f.numData, pairs, f.defaultBin, f.enableSparse)
}

// Bin returns the discretized value of a local row. Valid after FinishLoad.
func (f *Feature) Bin(row int32) uint8 {
	return f.rows.Bin(row)
}

func (f *Feature) FeatureIndex() int {
	return int(f.featureIndex)
}

func (f *Feature) NumData() int32 {
	return f.numData
}

func (f *Feature) BinMapper() *BinMapper {
	return f.binMapper
}

func (f *Feature) WriteTo(w io.Writer) (total int64, err error) {
	var ni64 int64
	total, err = serde.Int32WriteTo(w, f.featureIndex)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize feature index")
		return
	}
	ni64, err = serde.Int32WriteTo(w, f.numData)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize feature row count")
		return
	}
	total += ni64
	ni64, err = f.binMapper.WriteTo(w)
	if err != nil {
		err = errors.Wrapf(err, "couldn't serialize bin mapper of feature %v", f.featureIndex)
		return
	}
	total += ni64
	if f.rows == nil {
		err = errors.Errorf("feature %v has no finished row storage", f.featureIndex)
		return
	}
	ni64, err = f.rows.WriteTo(w)
	if err != nil {
		err = errors.Wrapf(err, "couldn't serialize rows of feature %v", f.featureIndex)
		return
	}
	total += ni64
	return
}

// ReadFeatureFrom restores a feature written by WriteTo. A non-empty
// usedRows keeps only those global rows, renumbered 0..len(usedRows).
func ReadFeatureFrom(r io.Reader, usedRows []int32) (f *Feature, total int64, err error) {
	f = &Feature{}
	total, err = serde.Int32ReadFrom(&f.featureIndex, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize feature index")
		return
	}
	var ni64 int64
	ni64, err = serde.Int32ReadFrom(&f.numData, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize feature row count")
		return
	}
	total += ni64
	f.binMapper = &BinMapper{}
	ni64, err = f.binMapper.ReadFrom(r)
	if err != nil {
		err = errors.Wrapf(err, "couldn't deserialize bin mapper of feature %v", f.featureIndex)
		return
	}
	total += ni64
	f.defaultBin = f.binMapper.ValueToBin(0)
	f.rows, ni64, err = dsets.ReadBinRows(r, usedRows)
	if err != nil {
		err = errors.Wrapf(err, "couldn't deserialize rows of feature %v", f.featureIndex)
		return
	}
	total += ni64
	if len(usedRows) > 0 {
		f.numData = int32(len(usedRows))
	}
	return
}
