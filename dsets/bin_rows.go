package dsets

import (
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/misc/serde"
)

const denseRowsFlag byte = 'D'
const sparseRowsFlag byte = 'S'

// A sparse storage pays off only when most rows sit on the default bin.
const sparseOccupancyThreshold = 0.3

type denseBinRows struct {
	defaultBin uint8
	bins       []uint8
}

type sparseBinRows struct {
	numData    int32
	defaultBin uint8
	rows       *roaring.Bitmap
	bins       []uint8
}

// BuildBinRows materializes row/bin pairs into a dense or sparse storage.
// Pairs sitting on the default bin carry no information and are dropped
// before the representation is chosen.
func BuildBinRows(numData int32, pairs []RowBin, defaultBin uint8, enableSparse bool) IBinRows {
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Row < pairs[j].Row
	})
	nonDefault := 0
	for i := range pairs {
		if pairs[i].Bin != defaultBin {
			nonDefault++
		}
	}
	if enableSparse && numData > 0 && float64(nonDefault)/float64(numData) <= sparseOccupancyThreshold {
		s := &sparseBinRows{
			numData:    numData,
			defaultBin: defaultBin,
			rows:       roaring.NewBitmap(),
			bins:       make([]uint8, 0, nonDefault),
		}
		for i := range pairs {
			if pairs[i].Bin == defaultBin {
				continue
			}
			s.rows.Add(uint32(pairs[i].Row))
			s.bins = append(s.bins, pairs[i].Bin)
		}
		return s
	}
	d := &denseBinRows{
		defaultBin: defaultBin,
		bins:       make([]uint8, numData),
	}
	for i := range d.bins {
		d.bins[i] = defaultBin
	}
	for i := range pairs {
		d.bins[pairs[i].Row] = pairs[i].Bin
	}
	return d
}

func (d *denseBinRows) Bin(row int32) uint8 {
	return d.bins[row]
}

func (d *denseBinRows) NumData() int32 {
	return int32(len(d.bins))
}

func (d *denseBinRows) NonDefaultCount() (n int32) {
	for i := range d.bins {
		if d.bins[i] != d.defaultBin {
			n++
		}
	}
	return
}

func (d *denseBinRows) WriteTo(w io.Writer) (total int64, err error) {
	var ni64 int64
	total, err = serde.ByteWriteTo(w, denseRowsFlag)
	if err != nil {
		return
	}
	ni64, err = serde.ByteWriteTo(w, d.defaultBin)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.ByteSliceWriteTo(w, d.bins)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize dense bin rows")
		return
	}
	total += ni64
	return
}

func (s *sparseBinRows) Bin(row int32) uint8 {
	if !s.rows.Contains(uint32(row)) {
		return s.defaultBin
	}
	return s.bins[s.rows.Rank(uint32(row))-1]
}

func (s *sparseBinRows) NumData() int32 {
	return s.numData
}

func (s *sparseBinRows) NonDefaultCount() int32 {
	return int32(len(s.bins))
}

func (s *sparseBinRows) WriteTo(w io.Writer) (total int64, err error) {
	var ni64 int64
	total, err = serde.ByteWriteTo(w, sparseRowsFlag)
	if err != nil {
		return
	}
	ni64, err = serde.ByteWriteTo(w, s.defaultBin)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.Int32WriteTo(w, s.numData)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = s.rows.WriteTo(w)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize sparse row bitmap")
		return
	}
	total += ni64
	ni64, err = serde.ByteSliceWriteTo(w, s.bins)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize sparse bin values")
		return
	}
	total += ni64
	return
}

// ReadBinRows restores a storage written by WriteTo. A non-empty usedRows
// re-slices the stored global rows down to the given ascending row indices,
// renumbering them 0..len(usedRows).
func ReadBinRows(r io.Reader, usedRows []int32) (rows IBinRows, total int64, err error) {
	var ni64 int64
	var kind byte
	total, err = serde.ByteReadFrom(&kind, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't read bin rows kind")
		return
	}
	var defaultBin byte
	ni64, err = serde.ByteReadFrom(&defaultBin, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't read default bin")
		return
	}
	total += ni64

	switch kind {
	case denseRowsFlag:
		d := &denseBinRows{defaultBin: defaultBin}
		ni64, err = serde.ByteSliceReadFrom(&d.bins, r)
		if err != nil {
			err = errors.Wrap(err, "couldn't read dense bin rows")
			return
		}
		total += ni64
		if len(usedRows) > 0 {
			kept := make([]uint8, len(usedRows))
			for i, row := range usedRows {
				kept[i] = d.bins[row]
			}
			d.bins = kept
		}
		rows = d
		return
	case sparseRowsFlag:
		s := &sparseBinRows{defaultBin: defaultBin, rows: roaring.NewBitmap()}
		ni64, err = serde.Int32ReadFrom(&s.numData, r)
		if err != nil {
			err = errors.Wrap(err, "couldn't read sparse row count")
			return
		}
		total += ni64
		ni64, err = s.rows.ReadFrom(r)
		if err != nil {
			err = errors.Wrap(err, "couldn't read sparse row bitmap")
			return
		}
		total += ni64
		ni64, err = serde.ByteSliceReadFrom(&s.bins, r)
		if err != nil {
			err = errors.Wrap(err, "couldn't read sparse bin values")
			return
		}
		total += ni64
		if len(usedRows) > 0 {
			kept := roaring.NewBitmap()
			keptBins := make([]uint8, 0, len(usedRows))
			for i, row := range usedRows {
				if s.rows.Contains(uint32(row)) {
					kept.Add(uint32(i))
					keptBins = append(keptBins, s.bins[s.rows.Rank(uint32(row))-1])
				}
			}
			s.rows = kept
			s.bins = keptBins
			s.numData = int32(len(usedRows))
		}
		rows = s
		return
	}
	err = errors.Errorf("unknown bin rows kind: %v", kind)
	return
}
