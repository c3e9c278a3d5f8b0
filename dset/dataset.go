package dset

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/misc/serde"
)

// Dataset is the fully materialized, locally partitioned training input:
// discretized feature columns plus per-row metadata.
type Dataset struct {
	DataFilename     string
	NumData          int32
	NumClass         int
	NumTotalFeatures int

	// UsedFeatureMap maps an original column to its slot in Features,
	// -1 when the column is ignored or trivial.
	UsedFeatureMap []int32
	FeatureNames   []string
	Features       []*Feature
	Metadata       *Metadata

	EnableSparse      bool
	LoadedFromBinFile bool
}

func NewDataset(numClass int, enableSparse bool) *Dataset {
	return &Dataset{
		NumClass:     numClass,
		EnableSparse: enableSparse,
		Metadata:     NewMetadata(),
	}
}

func (d *Dataset) NumFeatures() int {
	return len(d.Features)
}

// FeatureAt returns the used feature holding the given original column,
// or nil when the column was dropped.
func (d *Dataset) FeatureAt(column int) *Feature {
	if column < 0 || column >= len(d.UsedFeatureMap) {
		return nil
	}
	slot := d.UsedFeatureMap[column]
	if slot < 0 {
		return nil
	}
	return d.Features[slot]
}

// FinishLoad merges every feature's per-thread push buffers. Called once
// after extraction.
func (d *Dataset) FinishLoad() {
	for i := range d.Features {
		d.Features[i].FinishLoad()
	}
}

// CopyFeatureMapperFrom aligns this dataset's feature space with an
// already-built training dataset: same column map, names and bin mappers,
// fresh row storages sized for the local rows.
func (d *Dataset) CopyFeatureMapperFrom(train *Dataset, enableSparse bool, numThreads int) {
	d.NumTotalFeatures = train.NumTotalFeatures
	d.UsedFeatureMap = make([]int32, len(train.UsedFeatureMap))
	copy(d.UsedFeatureMap, train.UsedFeatureMap)
	d.FeatureNames = make([]string, len(train.FeatureNames))
	copy(d.FeatureNames, train.FeatureNames)
	d.Features = make([]*Feature, 0, len(train.Features))
	for _, f := range train.Features {
		d.Features = append(d.Features,
			NewFeature(f.FeatureIndex(), f.BinMapper().Clone(), d.NumData, enableSparse, numThreads))
	}
}

// SaveBinaryTo writes the dataset as the self-describing binary stream:
// a size-prefixed header, a size-prefixed metadata blob and one
// size-prefixed blob per feature. Integers are little-endian, row counts
// are 32-bit.
func (d *Dataset) SaveBinaryTo(w io.Writer) (err error) {
	var section bytes.Buffer

	if _, err = serde.Int32WriteTo(&section, d.NumData); err != nil {
		return
	}
	if _, err = serde.Int32WriteTo(&section, int32(d.NumClass)); err != nil {
		return
	}
	if _, err = serde.Int32WriteTo(&section, int32(d.NumFeatures())); err != nil {
		return
	}
	if _, err = serde.Int32WriteTo(&section, int32(d.NumTotalFeatures)); err != nil {
		return
	}
	if _, err = serde.IntWriteTo(&section, int64(len(d.UsedFeatureMap))); err != nil {
		return
	}
	for _, v := range d.UsedFeatureMap {
		if _, err = serde.Int32WriteTo(&section, v); err != nil {
			return
		}
	}
	for _, name := range d.FeatureNames {
		if _, err = serde.Int32WriteTo(&section, int32(len(name))); err != nil {
			return
		}
		if _, err = section.WriteString(name); err != nil {
			err = errors.WithStack(err)
			return
		}
	}
	if err = writeSection(w, &section); err != nil {
		err = errors.Wrap(err, "couldn't write binary header")
		return
	}

	section.Reset()
	if _, err = d.Metadata.WriteTo(&section); err != nil {
		err = errors.Wrap(err, "couldn't serialize metadata")
		return
	}
	if err = writeSection(w, &section); err != nil {
		err = errors.Wrap(err, "couldn't write metadata section")
		return
	}

	for i, f := range d.Features {
		section.Reset()
		if _, err = f.WriteTo(&section); err != nil {
			err = errors.Wrapf(err, "couldn't serialize feature #%v", i)
			return
		}
		if err = writeSection(w, &section); err != nil {
			err = errors.Wrapf(err, "couldn't write feature section #%v", i)
			return
		}
	}
	return
}

func writeSection(w io.Writer, section *bytes.Buffer) (err error) {
	if _, err = serde.IntWriteTo(w, int64(section.Len())); err != nil {
		return
	}
	var n int
	n, err = w.Write(section.Bytes())
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	if n != section.Len() {
		err = errors.Errorf("Written data length %v. Expected %v", n, section.Len())
	}
	return
}

// SaveBinaryToFile writes <path> in the binary dataset format. The
// conventional path is the source data file plus a ".bin" suffix.
func (d *Dataset) SaveBinaryToFile(path string) (err error) {
	fl, fileErr := os.Create(path)
	if fileErr != nil {
		err = errors.Wrapf(fileErr, "Creating file %v", path)
		return
	}
	defer fl.Close()
	buffered := bufio.NewWriter(fl)
	if err = d.SaveBinaryTo(buffered); err != nil {
		err = errors.Wrapf(err, "Writing binary dataset to %v", path)
		return
	}
	err = errors.WithStack(buffered.Flush())
	return
}
