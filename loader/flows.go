package loader

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/sources"
)

// LoadFromFile is the training entry flow: resolve column roles, prefer
// the binary cache when one sits next to the file, otherwise run the
// sample/construct/extract pipeline over the text, partitioned across
// machines when numMachines > 1.
func (l *Loader) LoadFromFile(filename string, rank, numMachines int) (ds *dset.Dataset, err error) {
	if !l.headerResolved {
		if err = l.SetHeader(filename); err != nil {
			return
		}
	}
	if numMachines > 1 && !l.conf.IsPrePartition && l.groupIdx != dset.NO_SPECIFIC {
		err = errors.New("Using a query id without pre-partitioning the data file is not supported for parallel training. Please use an additional query file or pre-partition the data")
		return
	}
	if CheckCanLoadFromBin(filename) {
		ds, err = l.loadFromBinFile(filename+".bin", rank, numMachines)
		if err != nil {
			return
		}
		ds.DataFilename = filename
		return ds, l.checkDataset(ds)
	}

	ds = dset.NewDataset(l.conf.NumClass, l.conf.IsEnableSparse)
	ds.DataFilename = filename
	if err = ds.Metadata.InitFromFile(filename, l.conf.NumClass); err != nil {
		return
	}
	parser, err := l.createParser(filename)
	if err != nil {
		return
	}

	var numGlobalData int32
	var usedIndices []int32
	if !l.conf.UseTwoRoundLoading {
		var lines []string
		lines, numGlobalData, usedIndices, err = l.loadTextDataToMemory(filename, ds.Metadata, rank, numMachines)
		if err != nil {
			return
		}
		ds.NumData = int32(len(lines))
		sample := l.sampleTextDataFromMemory(lines)
		if err = l.constructBinMappers(rank, numMachines, sample, parser, ds); err != nil {
			return
		}
		ds.Metadata.Init(ds.NumData, l.conf.NumClass, l.weightIdx, l.groupIdx)
		if err = l.extractFeaturesFromMemory(lines, parser, ds); err != nil {
			return
		}
	} else {
		var sample []string
		sample, numGlobalData, usedIndices, err = l.sampleTextDataFromFile(filename, ds.Metadata, rank, numMachines)
		if err != nil {
			return
		}
		if len(usedIndices) > 0 {
			ds.NumData = int32(len(usedIndices))
		} else {
			ds.NumData = numGlobalData
		}
		if err = l.constructBinMappers(rank, numMachines, sample, parser, ds); err != nil {
			return
		}
		ds.Metadata.Init(ds.NumData, l.conf.NumClass, l.weightIdx, l.groupIdx)
		if err = l.extractFeaturesFromFile(filename, parser, usedIndices, ds); err != nil {
			return
		}
	}
	if err = ds.Metadata.CheckOrPartition(numGlobalData, usedIndices); err != nil {
		return
	}
	if l.conf.SaveBinary {
		binFilename := filename + ".bin"
		logger.Infof("Saving binary dataset to %v", binFilename)
		if err = ds.SaveBinaryToFile(binFilename); err != nil {
			return
		}
	}
	return ds, l.checkDataset(ds)
}

// LoadFromFileAlignedWith is the validation entry flow: same reading
// machinery as LoadFromFile but single-machine, with the feature space
// copied from the training dataset instead of learned, and no validation
// of the result.
func (l *Loader) LoadFromFileAlignedWith(filename string, train *dset.Dataset) (ds *dset.Dataset, err error) {
	if !l.headerResolved {
		if err = l.SetHeader(filename); err != nil {
			return
		}
	}
	if CheckCanLoadFromBin(filename) {
		ds, err = l.loadFromBinFile(filename+".bin", 0, 1)
		if err != nil {
			return
		}
		ds.DataFilename = filename
		return
	}
	ds = dset.NewDataset(l.conf.NumClass, l.conf.IsEnableSparse)
	ds.DataFilename = filename
	if err = ds.Metadata.InitFromFile(filename, l.conf.NumClass); err != nil {
		return
	}
	parser, err := l.createParser(filename)
	if err != nil {
		return
	}
	var numGlobalData int32
	if !l.conf.UseTwoRoundLoading {
		var lines []string
		lines, numGlobalData, _, err = l.loadTextDataToMemory(filename, ds.Metadata, 0, 1)
		if err != nil {
			return
		}
		ds.NumData = int32(len(lines))
		ds.Metadata.Init(ds.NumData, l.conf.NumClass, l.weightIdx, l.groupIdx)
		ds.CopyFeatureMapperFrom(train, l.conf.IsEnableSparse, l.numThreads)
		if err = l.extractFeaturesFromMemory(lines, parser, ds); err != nil {
			return
		}
	} else {
		reader := sources.NewTextReader(filename, l.conf.HasHeader)
		ds.NumData, err = reader.CountLine()
		if err != nil {
			return
		}
		numGlobalData = ds.NumData
		ds.Metadata.Init(ds.NumData, l.conf.NumClass, l.weightIdx, l.groupIdx)
		ds.CopyFeatureMapperFrom(train, l.conf.IsEnableSparse, l.numThreads)
		if err = l.extractFeaturesFromFile(filename, parser, nil, ds); err != nil {
			return
		}
	}
	err = ds.Metadata.CheckOrPartition(numGlobalData, nil)
	return
}

// ConstructFromSampleData bypasses text entirely: bin mappers are learned
// from caller-supplied per-column sample arrays.
func (l *Loader) ConstructFromSampleData(sampleValues [][]float64, totalSampleSize int, numData int32) (ds *dset.Dataset, err error) {
	mappers := make([]*dset.BinMapper, len(sampleValues))
	parallelFor(len(sampleValues), l.numThreads, func(tid, lo, hi int) {
		for i := lo; i < hi; i++ {
			mappers[i] = &dset.BinMapper{}
			mappers[i].FindBin(sampleValues[i], totalSampleSize, l.conf.MaxBin)
		}
	})
	ds = dset.NewDataset(l.conf.NumClass, l.conf.IsEnableSparse)
	ds.NumData = numData
	ds.NumTotalFeatures = len(sampleValues)
	ds.UsedFeatureMap = make([]int32, len(sampleValues))
	for i := range ds.UsedFeatureMap {
		ds.UsedFeatureMap[i] = -1
	}
	for i, mapper := range mappers {
		if mapper.IsTrivial() {
			logger.Warnf("Ignoring Column_%v, only has one value", i)
			continue
		}
		ds.UsedFeatureMap[i] = int32(len(ds.Features))
		ds.Features = append(ds.Features,
			dset.NewFeature(i, mapper, ds.NumData, ds.EnableSparse, l.numThreads))
	}
	if len(l.featureNames) == 0 {
		for i := 0; i < ds.NumTotalFeatures; i++ {
			l.featureNames = append(l.featureNames, fmt.Sprintf("Column_%v", i))
		}
	}
	ds.FeatureNames = l.featureNames
	ds.Metadata.Init(numData, l.conf.NumClass, dset.NO_SPECIFIC, dset.NO_SPECIFIC)
	return
}

// LoadFromRows builds a dataset from a SQL query result, reusing the
// in-memory text pipeline. Single-machine only; column roles must be
// index-based since a result set has no header line.
func (l *Loader) LoadFromRows(ctx context.Context, rows *sql.Rows) (ds *dset.Dataset, err error) {
	collector := &sources.LineCollector{Separator: l.conf.ColumnSeparator}
	if _, err = sources.SqlRowsStream(ctx, rows, collector); err != nil {
		err = errors.Wrap(err, "fetching rows")
		return
	}
	if !l.headerResolved {
		if err = l.resolveRoles(map[string]int{}); err != nil {
			return
		}
	}
	lines := collector.Lines
	ds = dset.NewDataset(l.conf.NumClass, l.conf.IsEnableSparse)
	ds.NumData = int32(len(lines))
	if len(lines) == 0 {
		err = errors.New("query returned no rows")
		return
	}
	parser := sources.CreateParser(lines[0], l.labelIdx)
	if parser == nil {
		err = errors.Errorf("Could not recognize data format of the query result")
		return
	}
	sample := l.sampleTextDataFromMemory(lines)
	if err = l.constructBinMappers(0, 1, sample, parser, ds); err != nil {
		return
	}
	ds.Metadata.Init(ds.NumData, l.conf.NumClass, l.weightIdx, l.groupIdx)
	if err = l.extractFeaturesFromMemory(lines, parser, ds); err != nil {
		return
	}
	if err = ds.Metadata.CheckOrPartition(ds.NumData, nil); err != nil {
		return
	}
	return ds, l.checkDataset(ds)
}

func (l *Loader) createParser(filename string) (parser sources.IParser, err error) {
	reader := sources.NewTextReader(filename, l.conf.HasHeader)
	firstDataLine, err := reader.FirstDataLine()
	if err != nil {
		return
	}
	parser = sources.CreateParser(firstDataLine, l.labelIdx)
	if parser == nil {
		err = errors.Errorf("Could not recognize data format of %v", filename)
	}
	return
}

func (l *Loader) checkDataset(ds *dset.Dataset) (err error) {
	if ds.NumData <= 0 {
		err = errors.Errorf("Data file %v is empty", ds.DataFilename)
		return
	}
	if len(ds.Features) == 0 {
		err = errors.Errorf("No usable features in data file %v", ds.DataFilename)
		return
	}
	return
}
