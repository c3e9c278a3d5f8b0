package loader

import (
	"github.com/ovlad32/gbdata/sources"
)

// newPartitionPredicate builds the row-keep decision for this machine.
// With query boundaries present the decision is drawn once per group and
// carried across the group's rows; otherwise one draw per row. The
// predicate owns mutable state and must be driven by a single linear pass
// over ascending line indices.
func (l *Loader) newPartitionPredicate(queryBoundaries []int32, numQueries int32, rank, numMachines int) func(int32) bool {
	if queryBoundaries == nil {
		return func(int32) bool {
			return l.rnd.NextInt(0, numMachines) == rank
		}
	}
	qid := int32(-1)
	isQueryUsed := false
	return func(lineIdx int32) bool {
		if qid >= numQueries {
			logger.Fatalf("Current query exceeds the range of the query file, please ensure the query file is correct")
		}
		if lineIdx >= queryBoundaries[qid+1] {
			isQueryUsed = l.rnd.NextInt(0, numMachines) == rank
			qid++
		}
		return isQueryUsed
	}
}

// loadTextDataToMemory reads this machine's rows. With one machine or
// pre-partitioned input every row is local; otherwise rows (or whole query
// groups) are kept by the seeded partition predicate.
func (l *Loader) loadTextDataToMemory(filename string, metadata queryBoundarySource,
	rank, numMachines int) (lines []string, numGlobalData int32, usedIndices []int32, err error) {
	reader := sources.NewTextReader(filename, l.conf.HasHeader)
	if numMachines == 1 || l.conf.IsPrePartition {
		numGlobalData, err = reader.ReadAllLines()
	} else {
		keep := l.newPartitionPredicate(metadata.QueryBoundaries(), metadata.NumQueries(), rank, numMachines)
		numGlobalData, err = reader.ReadAndFilterLines(keep, &usedIndices)
	}
	if err != nil {
		return
	}
	lines = reader.Lines()
	return
}

// sampleTextDataFromMemory picks the bin-construction sample out of the
// already-loaded local rows.
func (l *Loader) sampleTextDataFromMemory(data []string) []string {
	sampleCnt := l.conf.BinConstructSampleCnt
	if sampleCnt > len(data) {
		sampleCnt = len(data)
	}
	sampleIndices := l.rnd.Sample(len(data), sampleCnt)
	out := make([]string, len(sampleIndices))
	for i, idx := range sampleIndices {
		out[i] = data[idx]
	}
	return out
}

// sampleTextDataFromFile draws the bin-construction sample in one file
// pass (two-round loading), partitioning on the fly when distributed.
func (l *Loader) sampleTextDataFromFile(filename string, metadata queryBoundarySource,
	rank, numMachines int) (sample []string, numGlobalData int32, usedIndices []int32, err error) {
	reader := sources.NewTextReader(filename, l.conf.HasHeader)
	sampleCnt := l.conf.BinConstructSampleCnt
	if numMachines == 1 || l.conf.IsPrePartition {
		numGlobalData, err = reader.SampleFromFile(l.rnd, sampleCnt, &sample)
	} else {
		keep := l.newPartitionPredicate(metadata.QueryBoundaries(), metadata.NumQueries(), rank, numMachines)
		numGlobalData, err = reader.SampleAndFilterFromFile(keep, &usedIndices, l.rnd, sampleCnt, &sample)
	}
	return
}

type queryBoundarySource interface {
	QueryBoundaries() []int32
	NumQueries() int32
}
