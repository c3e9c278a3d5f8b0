package dset

import (
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/misc/serde"
)

// zeroThreshold separates "present" sample values from explicit zeros;
// absent cells and explicit zeros contribute the same way to the histogram.
const zeroThreshold = 1e-15

// BinMapper quantizes one feature column into at most maxBin histogram bins.
// The learned state is a vector of inclusive upper bounds, the last one
// always +Inf.
type BinMapper struct {
	numBin      int32
	trivial     bool
	upperBounds []float64
}

type valueCount struct {
	value float64
	count int
}

// FindBin learns the quantization from sampled values. values holds the
// non-zero sample cells of the column; the difference between
// totalSampleCnt and len(values) is accounted as zeros. The algorithm is
// deterministic: identical inputs produce identical bounds on every machine.
func (m *BinMapper) FindBin(values []float64, totalSampleCnt int, maxBin int) {
	zeroCnt := totalSampleCnt - len(values)
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	distinct := make([]valueCount, 0, len(sorted)+1)
	zeroPlaced := zeroCnt <= 0
	push := func(v float64, c int) {
		if !zeroPlaced && v > 0 {
			distinct = append(distinct, valueCount{0, zeroCnt})
			zeroPlaced = true
		}
		distinct = append(distinct, valueCount{v, c})
	}
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		push(sorted[i], j-i)
		i = j
	}
	if !zeroPlaced {
		distinct = append(distinct, valueCount{0, zeroCnt})
	}

	m.trivial = len(distinct) <= 1
	if len(distinct) == 0 {
		m.numBin = 1
		m.upperBounds = []float64{math.Inf(1)}
		return
	}

	if len(distinct) <= maxBin {
		m.upperBounds = make([]float64, len(distinct))
		for i := 0; i < len(distinct)-1; i++ {
			m.upperBounds[i] = (distinct[i].value + distinct[i+1].value) / 2
		}
		m.upperBounds[len(distinct)-1] = math.Inf(1)
		m.numBin = int32(len(distinct))
		return
	}

	// equal-frequency split over the distinct values
	total := 0
	for i := range distinct {
		total += distinct[i].count
	}
	bounds := make([]float64, 0, maxBin)
	restBins := maxBin
	restCnt := total
	acc := 0
	for i := 0; i < len(distinct)-1; i++ {
		acc += distinct[i].count
		restCnt -= distinct[i].count
		if acc >= (restCnt+acc)/restBins && restBins > 1 {
			bounds = append(bounds, (distinct[i].value+distinct[i+1].value)/2)
			restBins--
			acc = 0
		}
	}
	bounds = append(bounds, math.Inf(1))
	m.upperBounds = bounds
	m.numBin = int32(len(bounds))
}

func (m *BinMapper) NumBin() int {
	return int(m.numBin)
}

func (m *BinMapper) IsTrivial() bool {
	return m.trivial
}

// ValueToBin returns the id of the first bin whose upper bound admits v.
func (m *BinMapper) ValueToBin(v float64) uint8 {
	lo, hi := 0, len(m.upperBounds)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if v <= m.upperBounds[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return uint8(lo)
}

const binMapperFixedHead = 4 + 1 + 8 // numBin, trivial flag, bound count

// SizeForSpecificBin is the fixed slot size a mapper occupies in the
// distributed exchange buffer, regardless of how many bins it learned.
func SizeForSpecificBin(maxBin int) int {
	return binMapperFixedHead + 8*maxBin
}

// CopyTo serializes the mapper into a fixed-size slot. buf must hold at
// least SizeForSpecificBin(maxBin) bytes for the maxBin the mapper was
// learned with.
func (m *BinMapper) CopyTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(m.numBin))
	if m.trivial {
		buf[4] = 1
	} else {
		buf[4] = 0
	}
	binary.LittleEndian.PutUint64(buf[5:], uint64(len(m.upperBounds)))
	offset := binMapperFixedHead
	for _, b := range m.upperBounds {
		binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(b))
		offset += 8
	}
}

// CopyFrom restores a mapper from a fixed-size slot written by CopyTo.
func (m *BinMapper) CopyFrom(buf []byte) {
	m.numBin = int32(binary.LittleEndian.Uint32(buf[0:]))
	m.trivial = buf[4] != 0
	boundCnt := int(binary.LittleEndian.Uint64(buf[5:]))
	m.upperBounds = make([]float64, boundCnt)
	offset := binMapperFixedHead
	for i := range m.upperBounds {
		m.upperBounds[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset:]))
		offset += 8
	}
}

func (m *BinMapper) Clone() *BinMapper {
	clone := &BinMapper{
		numBin:      m.numBin,
		trivial:     m.trivial,
		upperBounds: make([]float64, len(m.upperBounds)),
	}
	copy(clone.upperBounds, m.upperBounds)
	return clone
}

func (m *BinMapper) WriteTo(w io.Writer) (total int64, err error) {
	var ni64 int64
	total, err = serde.Int32WriteTo(w, m.numBin)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize bin count")
		return
	}
	var flag byte
	if m.trivial {
		flag = 1
	}
	ni64, err = serde.ByteWriteTo(w, flag)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.Float64SliceWriteTo(w, m.upperBounds)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize bin upper bounds")
		return
	}
	total += ni64
	return
}

func (m *BinMapper) ReadFrom(r io.Reader) (total int64, err error) {
	var ni64 int64
	total, err = serde.Int32ReadFrom(&m.numBin, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize bin count")
		return
	}
	var flag byte
	ni64, err = serde.ByteReadFrom(&flag, r)
	if err != nil {
		return
	}
	total += ni64
	m.trivial = flag != 0
	ni64, err = serde.Float64SliceReadFrom(&m.upperBounds, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize bin upper bounds")
		return
	}
	total += ni64
	return
}
