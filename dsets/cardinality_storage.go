package dsets

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sync"

	hll "github.com/clarkduvall/hyperloglog"
	"github.com/pkg/errors"
)

const PRECISION = uint8(14)

// cardinalityStorage estimates the distinct-value count of each column
// observed in the bin-construction sample.
type cardinalityStorage struct {
	precision   uint8
	onceInit    sync.Once
	columnState map[int]*hll.HyperLogLogPlus
}

func NewColumnCardinalityStorage() *cardinalityStorage {
	return &cardinalityStorage{}
}

func (s *cardinalityStorage) Add(column int, value float64) (err error) {
	s.onceInit.Do(func() {
		s.precision = PRECISION
		s.columnState = make(map[int]*hll.HyperLogLogPlus)
	})
	var state *hll.HyperLogLogPlus
	var found bool
	if state, found = s.columnState[column]; !found {
		state, err = hll.NewPlus(s.precision)
		if err != nil {
			err = errors.WithStack(err)
			return
		}
		s.columnState[column] = state
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(value))
	h := fnv.New64()
	_, err = h.Write(b[:])
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	state.Add(h)
	return
}

func (s *cardinalityStorage) Cardinality(column int) (n uint, err error) {
	if state, found := s.columnState[column]; !found {
		err = errors.Errorf("No HLL state registered for column %v", column)
	} else {
		n = uint(state.Count())
	}
	return
}

func (s *cardinalityStorage) Cardinalities(consume func(int, uint) error) error {
	for c, state := range s.columnState {
		err := consume(c, uint(state.Count()))
		if err != nil {
			err = errors.WithStack(err)
			return err
		}
	}
	return nil
}
