package loader

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/dsets"
	"github.com/ovlad32/gbdata/sources"
)

// sampleZeroThreshold separates informative sample cells from zeros;
// explicit zeros and absent cells contribute the same to the quantiles.
const sampleZeroThreshold = 1e-15

// constructBinMappers learns one BinMapper per observed column from the
// sampled rows and assembles the dataset's feature set. With several
// machines each one learns only its contiguous shard of columns and the
// full set is exchanged through one allgather.
func (l *Loader) constructBinMappers(rank, numMachines int, sampleData []string,
	parser sources.IParser, ds *dset.Dataset) (err error) {

	cardinality := dsets.NewColumnCardinalityStorage()
	var sampleValues [][]float64
	var oneline []sources.ColumnValue
	var label float64
	for i := range sampleData {
		err = parser.ParseOneLine(sampleData[i], &oneline, &label)
		if err != nil {
			err = errors.Wrapf(err, "parsing sample line #%v", i)
			return
		}
		for _, cell := range oneline {
			if math.Abs(cell.Value) <= sampleZeroThreshold {
				continue
			}
			for cell.Column >= len(sampleValues) {
				sampleValues = append(sampleValues, nil)
			}
			sampleValues[cell.Column] = append(sampleValues[cell.Column], cell.Value)
			if erre := cardinality.Add(cell.Column, cell.Value); erre != nil {
				err = errors.WithStack(erre)
				return
			}
		}
	}

	ds.NumTotalFeatures = len(sampleValues)
	ds.UsedFeatureMap = make([]int32, len(sampleValues))
	for i := range ds.UsedFeatureMap {
		ds.UsedFeatureMap[i] = -1
	}

	if l.labelIdx < 0 || l.labelIdx > ds.NumTotalFeatures {
		err = errors.Errorf("label column index %v is outside the %v observed columns",
			l.labelIdx, ds.NumTotalFeatures)
		return
	}
	if l.weightIdx != dset.NO_SPECIFIC && l.weightIdx >= ds.NumTotalFeatures {
		err = errors.Errorf("weight column index %v is outside the %v observed columns",
			l.weightIdx, ds.NumTotalFeatures)
		return
	}
	if l.groupIdx != dset.NO_SPECIFIC && l.groupIdx >= ds.NumTotalFeatures {
		err = errors.Errorf("group column index %v is outside the %v observed columns",
			l.groupIdx, ds.NumTotalFeatures)
		return
	}

	if len(l.featureNames) == 0 {
		for i := 0; i < ds.NumTotalFeatures; i++ {
			l.featureNames = append(l.featureNames, fmt.Sprintf("Column_%v", i))
		}
	}
	ds.FeatureNames = l.featureNames

	var mappers []*dset.BinMapper
	if numMachines == 1 {
		mappers = l.findBinsLocally(sampleValues, len(sampleData))
	} else {
		mappers, err = l.findBinsDistributed(rank, numMachines, sampleValues, len(sampleData))
		if err != nil {
			return
		}
	}

	for i, mapper := range mappers {
		if mapper == nil {
			logger.Warnf("Ignoring feature %v", ds.FeatureNames[i])
			continue
		}
		if mapper.IsTrivial() {
			logger.Warnf("Ignoring feature %v, only has one value", ds.FeatureNames[i])
			continue
		}
		if n, cerr := cardinality.Cardinality(i); cerr == nil {
			logger.Debugf("Feature %v: ~%v distinct sample values, %v bins",
				ds.FeatureNames[i], n, mapper.NumBin())
		}
		ds.UsedFeatureMap[i] = int32(len(ds.Features))
		ds.Features = append(ds.Features,
			dset.NewFeature(i, mapper, ds.NumData, ds.EnableSparse, l.numThreads))
	}
	return
}

func (l *Loader) findBinsLocally(sampleValues [][]float64, sampleSize int) []*dset.BinMapper {
	mappers := make([]*dset.BinMapper, len(sampleValues))
	parallelFor(len(sampleValues), l.numThreads, func(tid, lo, hi int) {
		for i := lo; i < hi; i++ {
			if l.ignoreFeatures[i] {
				continue
			}
			mappers[i] = &dset.BinMapper{}
			mappers[i].FindBin(sampleValues[i], sampleSize, l.conf.MaxBin)
		}
	})
	return mappers
}

// findBinsDistributed shards the columns across machines, learns the
// local shard, exchanges the serialized mappers and restores all of them.
// Every rank must observe the same total column count.
func (l *Loader) findBinsDistributed(rank, numMachines int, sampleValues [][]float64,
	sampleSize int) (mappers []*dset.BinMapper, err error) {
	if l.network == nil {
		err = errors.New("distributed bin construction requires a network, none was set")
		return
	}
	totalNumFeature := len(sampleValues)
	step := (totalNumFeature + numMachines - 1) / numMachines
	if step < 1 {
		step = 1
	}
	starts := make([]int, numMachines)
	lens := make([]int, numMachines)
	for i := 0; i < numMachines-1; i++ {
		lens[i] = step
		if rest := totalNumFeature - starts[i]; lens[i] > rest {
			lens[i] = rest
		}
		starts[i+1] = starts[i] + lens[i]
	}
	lens[numMachines-1] = totalNumFeature - starts[numMachines-1]

	typeSize := dset.SizeForSpecificBin(l.conf.MaxBin)
	bufferSize := typeSize * totalNumFeature
	inputBuffer := make([]byte, bufferSize)
	outputBuffer := make([]byte, bufferSize)

	// mapper sizes differ per feature; every one is expanded to the fixed
	// slot so offsets stay rank-independent
	parallelFor(lens[rank], l.numThreads, func(tid, lo, hi int) {
		for i := lo; i < hi; i++ {
			var mapper dset.BinMapper
			mapper.FindBin(sampleValues[starts[rank]+i], sampleSize, l.conf.MaxBin)
			slot := (starts[rank] + i) * typeSize
			mapper.CopyTo(inputBuffer[slot : slot+typeSize])
		}
	})
	byteStarts := make([]int, numMachines)
	byteLens := make([]int, numMachines)
	for i := 0; i < numMachines; i++ {
		byteStarts[i] = starts[i] * typeSize
		byteLens[i] = lens[i] * typeSize
	}
	err = l.network.Allgather(inputBuffer, byteStarts, byteLens, outputBuffer)
	if err != nil {
		err = errors.Wrap(err, "gathering bin mappers")
		return
	}
	mappers = make([]*dset.BinMapper, totalNumFeature)
	for i := 0; i < totalNumFeature; i++ {
		if l.ignoreFeatures[i] {
			continue
		}
		mappers[i] = &dset.BinMapper{}
		mappers[i].CopyFrom(outputBuffer[i*typeSize:])
	}
	return
}
