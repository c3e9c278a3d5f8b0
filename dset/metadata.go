package dset

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/misc/serde"
)

// Metadata carries the per-row side information of a Dataset: labels,
// optional weights, optional query boundaries for ranking tasks and an
// optional initial score matrix.
type Metadata struct {
	numData  int32
	numClass int32

	labels  []float32
	weights []float32

	// queryIDs is transient: filled when the group comes from a data column,
	// converted to queryBoundaries by CheckOrPartition.
	queryIDs        []int32
	queryBoundaries []int32
	numQueries      int32

	// side-file payloads are global until partitioned
	sideWeights         []float32
	sideQueryBoundaries []int32

	initScore []float64
}

func NewMetadata() *Metadata {
	return &Metadata{}
}

// InitFromFile loads the optional side files next to the data file:
// <path>.weight with one weight per line and <path>.query with one group
// size per line. Absence of either file is not an error.
func (m *Metadata) InitFromFile(dataPath string, numClass int) (err error) {
	m.numClass = int32(numClass)
	weights, found, err := readFloatLines(dataPath + ".weight")
	if err != nil {
		err = errors.Wrapf(err, "loading weight file for %v", dataPath)
		return
	}
	if found {
		m.sideWeights = make([]float32, len(weights))
		for i := range weights {
			m.sideWeights[i] = float32(weights[i])
		}
		logger.Infof("Loaded %v weights from side file", len(m.sideWeights))
	}
	counts, found, err := readFloatLines(dataPath + ".query")
	if err != nil {
		err = errors.Wrapf(err, "loading query file for %v", dataPath)
		return
	}
	if found {
		m.sideQueryBoundaries = make([]int32, len(counts)+1)
		for i := range counts {
			if counts[i] < 1 {
				err = errors.Errorf("query file for %v holds a non-positive group size at line %v", dataPath, i+1)
				return
			}
			m.sideQueryBoundaries[i+1] = m.sideQueryBoundaries[i] + int32(counts[i])
		}
		m.numQueries = int32(len(counts))
		logger.Infof("Loaded %v query groups from side file", m.numQueries)
	}
	return
}

func readFloatLines(path string) (values []float64, found bool, err error) {
	fl, fileErr := os.OpenFile(path, os.O_RDONLY, 0x444)
	if fileErr != nil {
		if os.IsNotExist(fileErr) {
			return
		}
		err = errors.Wrapf(fileErr, "Opening file %v", path)
		return
	}
	found = true
	defer fl.Close()
	scanner := bufio.NewScanner(fl)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, parseErr := strconv.ParseFloat(line, 64)
		if parseErr != nil {
			err = errors.Wrapf(parseErr, "parsing %v line %v", path, len(values)+1)
			return
		}
		values = append(values, v)
	}
	if scanner.Err() != nil {
		err = errors.WithStack(scanner.Err())
	}
	return
}

// Init allocates the per-row containers for the local partition.
// weightIdx/groupIdx tell whether those roles come from data columns;
// side-file payloads take precedence.
func (m *Metadata) Init(numData int32, numClass, weightIdx, groupIdx int) {
	m.numData = numData
	m.numClass = int32(numClass)
	m.labels = make([]float32, numData)
	if weightIdx != NO_SPECIFIC && m.sideWeights == nil {
		m.weights = make([]float32, numData)
	}
	if groupIdx != NO_SPECIFIC && m.sideQueryBoundaries == nil {
		m.queryIDs = make([]int32, numData)
	}
}

func (m *Metadata) NumData() int32 {
	return m.numData
}

func (m *Metadata) NumClass() int {
	return int(m.numClass)
}

func (m *Metadata) SetLabelAt(i int32, v float32) {
	m.labels[i] = v
}

func (m *Metadata) SetWeightAt(i int32, v float32) {
	if m.weights != nil {
		m.weights[i] = v
	}
}

func (m *Metadata) SetQueryAt(i int32, qid int32) {
	if m.queryIDs != nil {
		m.queryIDs[i] = qid
	}
}

// SetInitScore takes ownership of the column-major score matrix
// score[k*numData+i].
func (m *Metadata) SetInitScore(score []float64) {
	m.initScore = score
}

func (m *Metadata) Labels() []float32 {
	return m.labels
}

func (m *Metadata) Weights() []float32 {
	return m.weights
}

func (m *Metadata) InitScore() []float64 {
	return m.initScore
}

// QueryBoundaries exposes the group layout: the local boundaries once
// they are built (by CheckOrPartition or a binary reload), otherwise the
// global side-file boundaries; nil when the data has no groups.
func (m *Metadata) QueryBoundaries() []int32 {
	if m.queryBoundaries != nil {
		return m.queryBoundaries
	}
	return m.sideQueryBoundaries
}

func (m *Metadata) NumQueries() int32 {
	return m.numQueries
}

// CheckOrPartition reconciles global side-file payloads with the local
// partition after a text load. usedIndices is empty when this machine kept
// every row.
func (m *Metadata) CheckOrPartition(numGlobalData int32, usedIndices []int32) (err error) {
	if m.sideWeights != nil {
		if int32(len(m.sideWeights)) != numGlobalData {
			err = errors.Errorf("weight file holds %v rows, data file holds %v", len(m.sideWeights), numGlobalData)
			return
		}
		if len(usedIndices) > 0 {
			m.weights = make([]float32, len(usedIndices))
			for i, row := range usedIndices {
				m.weights[i] = m.sideWeights[row]
			}
		} else {
			m.weights = m.sideWeights
		}
		m.sideWeights = nil
	}
	if m.sideQueryBoundaries != nil {
		last := m.sideQueryBoundaries[len(m.sideQueryBoundaries)-1]
		if last != numGlobalData {
			err = errors.Errorf("query file covers %v rows, data file holds %v", last, numGlobalData)
			return
		}
		if len(usedIndices) > 0 {
			m.queryBoundaries, err = partitionBoundaries(m.sideQueryBoundaries, usedIndices)
			if err != nil {
				return
			}
		} else {
			m.queryBoundaries = m.sideQueryBoundaries
		}
		m.numQueries = int32(len(m.queryBoundaries) - 1)
		m.sideQueryBoundaries = nil
		return
	}
	if m.queryIDs != nil {
		m.queryBoundaries, err = boundariesFromQueryIDs(m.queryIDs)
		if err != nil {
			return
		}
		m.numQueries = int32(len(m.queryBoundaries) - 1)
		m.queryIDs = nil
	}
	return
}

// PartitionLabel keeps only the given global rows in every per-row
// container. Used on binary reload, where all payloads are global.
func (m *Metadata) PartitionLabel(usedIndices []int32) (err error) {
	if len(usedIndices) == 0 {
		return
	}
	oldNumData := m.numData
	labels := make([]float32, len(usedIndices))
	for i, row := range usedIndices {
		labels[i] = m.labels[row]
	}
	m.labels = labels
	if m.weights != nil {
		weights := make([]float32, len(usedIndices))
		for i, row := range usedIndices {
			weights[i] = m.weights[row]
		}
		m.weights = weights
	}
	if m.queryBoundaries != nil {
		m.queryBoundaries, err = partitionBoundaries(m.queryBoundaries, usedIndices)
		if err != nil {
			return
		}
		m.numQueries = int32(len(m.queryBoundaries) - 1)
	}
	if m.initScore != nil {
		kept := make([]float64, len(usedIndices)*int(m.numClass))
		for k := int32(0); k < m.numClass; k++ {
			for i, row := range usedIndices {
				kept[int(k)*len(usedIndices)+i] = m.initScore[k*oldNumData+row]
			}
		}
		m.initScore = kept
	}
	m.numData = int32(len(usedIndices))
	return
}

// partitionBoundaries rebuilds group boundaries for the kept rows. The
// kept rows must cover whole groups.
func partitionBoundaries(boundaries []int32, usedIndices []int32) (kept []int32, err error) {
	kept = []int32{0}
	pos := 0
	for q := 0; q < len(boundaries)-1; q++ {
		lo, hi := boundaries[q], boundaries[q+1]
		if pos >= len(usedIndices) || usedIndices[pos] >= hi {
			continue
		}
		groupSize := hi - lo
		for i := int32(0); i < groupSize; i++ {
			if pos >= len(usedIndices) || usedIndices[pos] != lo+i {
				err = errors.Errorf("partition splits query group %v", q)
				return
			}
			pos++
		}
		kept = append(kept, kept[len(kept)-1]+groupSize)
	}
	if pos != len(usedIndices) {
		err = errors.Errorf("%v kept rows fall outside the declared query groups", len(usedIndices)-pos)
		return
	}
	return
}

// boundariesFromQueryIDs converts an in-data group column to boundaries.
// Rows of one group must be consecutive.
func boundariesFromQueryIDs(queryIDs []int32) (boundaries []int32, err error) {
	boundaries = []int32{0}
	seen := make(map[int32]bool)
	for i := 1; i <= len(queryIDs); i++ {
		if i == len(queryIDs) || queryIDs[i] != queryIDs[i-1] {
			if seen[queryIDs[i-1]] {
				err = errors.Errorf("rows of query group %v are not consecutive", queryIDs[i-1])
				return
			}
			seen[queryIDs[i-1]] = true
			boundaries = append(boundaries, int32(i))
		}
	}
	return
}

func (m *Metadata) WriteTo(w io.Writer) (total int64, err error) {
	var ni64 int64
	total, err = serde.Int32WriteTo(w, m.numData)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize metadata row count")
		return
	}
	ni64, err = serde.Int32WriteTo(w, m.numClass)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.Int32WriteTo(w, m.numQueries)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.Float32SliceWriteTo(w, m.labels)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize labels")
		return
	}
	total += ni64
	ni64, err = serde.Float32SliceWriteTo(w, m.weights)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize weights")
		return
	}
	total += ni64
	ni64, err = serde.Int32SliceWriteTo(w, m.queryBoundaries)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize query boundaries")
		return
	}
	total += ni64
	ni64, err = serde.Float64SliceWriteTo(w, m.initScore)
	if err != nil {
		err = errors.Wrap(err, "couldn't serialize init score")
		return
	}
	total += ni64
	return
}

func (m *Metadata) ReadFrom(r io.Reader) (total int64, err error) {
	var ni64 int64
	total, err = serde.Int32ReadFrom(&m.numData, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize metadata row count")
		return
	}
	ni64, err = serde.Int32ReadFrom(&m.numClass, r)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.Int32ReadFrom(&m.numQueries, r)
	if err != nil {
		return
	}
	total += ni64
	ni64, err = serde.Float32SliceReadFrom(&m.labels, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize labels")
		return
	}
	total += ni64
	ni64, err = serde.Float32SliceReadFrom(&m.weights, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize weights")
		return
	}
	total += ni64
	ni64, err = serde.Int32SliceReadFrom(&m.queryBoundaries, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize query boundaries")
		return
	}
	total += ni64
	ni64, err = serde.Float64SliceReadFrom(&m.initScore, r)
	if err != nil {
		err = errors.Wrap(err, "couldn't deserialize init score")
		return
	}
	total += ni64
	if len(m.weights) == 0 {
		m.weights = nil
	}
	if len(m.queryBoundaries) == 0 {
		m.queryBoundaries = nil
	}
	if len(m.initScore) == 0 {
		m.initScore = nil
	}
	return
}
