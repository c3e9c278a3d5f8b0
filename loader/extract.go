package loader

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/sources"
)

// extractFeaturesFromMemory runs the second pass over the in-memory rows:
// discretized cells go to the features, label/weight/query cells to the
// metadata, processed lines are cleared to bound peak memory.
func (l *Loader) extractFeaturesFromMemory(textData []string, parser sources.IParser, ds *dset.Dataset) (err error) {
	var initScore []float64
	if l.predictFun != nil {
		initScore = make([]float64, int(ds.NumData)*ds.NumClass)
	}
	var errOnce sync.Once
	parallelFor(len(textData), l.numThreads, func(tid, lo, hi int) {
		var oneline []sources.ColumnValue
		var label float64
		for i := lo; i < hi; i++ {
			parseErr := parser.ParseOneLine(textData[i], &oneline, &label)
			if parseErr != nil {
				errOnce.Do(func() {
					err = errors.Wrapf(parseErr, "parsing data line #%v", i)
				})
				return
			}
			if initScore != nil {
				scores := l.predictFun(oneline)
				for k := 0; k < ds.NumClass; k++ {
					initScore[k*int(ds.NumData)+i] = scores[k]
				}
			}
			ds.Metadata.SetLabelAt(int32(i), float32(label))
			textData[i] = ""
			l.pushRow(ds, tid, int32(i), oneline)
		}
	})
	if err != nil {
		return
	}
	if initScore != nil {
		ds.Metadata.SetInitScore(initScore)
	}
	ds.FinishLoad()
	return
}

// extractFeaturesFromFile streams the file in blocks (two-round loading);
// each block is fanned out across the worker pool. When usedIndices is
// non-empty only those global rows are materialized.
func (l *Loader) extractFeaturesFromFile(filename string, parser sources.IParser,
	usedIndices []int32, ds *dset.Dataset) (err error) {
	var initScore []float64
	if l.predictFun != nil {
		initScore = make([]float64, int(ds.NumData)*ds.NumClass)
	}
	var errOnce sync.Once
	processFun := func(startIdx int32, lines []string) {
		parallelFor(len(lines), l.numThreads, func(tid, lo, hi int) {
			var oneline []sources.ColumnValue
			var label float64
			for i := lo; i < hi; i++ {
				row := startIdx + int32(i)
				parseErr := parser.ParseOneLine(lines[i], &oneline, &label)
				if parseErr != nil {
					errOnce.Do(func() {
						err = errors.Wrapf(parseErr, "parsing data row #%v", row)
					})
					return
				}
				if initScore != nil {
					scores := l.predictFun(oneline)
					for k := 0; k < ds.NumClass; k++ {
						initScore[k*int(ds.NumData)+int(row)] = scores[k]
					}
				}
				ds.Metadata.SetLabelAt(row, float32(label))
				l.pushRow(ds, tid, row, oneline)
			}
		})
	}
	reader := sources.NewTextReader(filename, l.conf.HasHeader)
	var readErr error
	if len(usedIndices) > 0 {
		readErr = reader.ReadPartAndProcessParallel(usedIndices, processFun)
	} else {
		readErr = reader.ReadAllAndProcessParallel(processFun)
	}
	if err != nil {
		return
	}
	if readErr != nil {
		err = errors.WithStack(readErr)
		return
	}
	if initScore != nil {
		ds.Metadata.SetInitScore(initScore)
	}
	ds.FinishLoad()
	return
}

// pushRow routes one parsed row: used feature cells into their columns,
// weight/query cells into metadata, everything else is dropped.
func (l *Loader) pushRow(ds *dset.Dataset, tid int, row int32, oneline []sources.ColumnValue) {
	for _, cell := range oneline {
		if cell.Column >= ds.NumTotalFeatures {
			continue
		}
		slot := ds.UsedFeatureMap[cell.Column]
		if slot >= 0 {
			ds.Features[slot].PushData(tid, row, cell.Value)
			continue
		}
		if cell.Column == l.weightIdx {
			ds.Metadata.SetWeightAt(row, float32(cell.Value))
		} else if cell.Column == l.groupIdx {
			ds.Metadata.SetQueryAt(row, int32(cell.Value))
		}
	}
}
