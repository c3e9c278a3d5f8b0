package loader

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/dsets"
	"github.com/ovlad32/gbdata/misc/serde"
)

const initialScratchSize = 64 * 1024

// CheckCanLoadFromBin reports whether a binary cache sits next to the
// data file. Its absence is not an error, just the text path.
func CheckCanLoadFromBin(filename string) bool {
	info, err := os.Stat(filename + ".bin")
	return err == nil && !info.IsDir()
}

// sectionReader pulls size-prefixed blobs out of the binary stream into a
// reusable scratch buffer, growing it before any read that would not fit.
type sectionReader struct {
	r       io.Reader
	scratch []byte
}

func newSectionReader(r io.Reader) *sectionReader {
	return &sectionReader{
		r:       r,
		scratch: make([]byte, initialScratchSize),
	}
}

func (s *sectionReader) next() (section []byte, err error) {
	var size int64
	_, err = serde.IntReadFrom(&size, s.r)
	if err != nil {
		err = errors.Wrap(err, "reading section size")
		return
	}
	if size < 0 {
		err = errors.Errorf("negative section size %v", size)
		return
	}
	if int64(len(s.scratch)) < size {
		s.scratch = make([]byte, size)
	}
	section = s.scratch[:size]
	_, err = io.ReadFull(s.r, section)
	if err != nil {
		err = errors.Wrapf(err, "reading section of %v bytes", size)
		return
	}
	return
}

func (s *sectionReader) scratchSize() int {
	return len(s.scratch)
}

// loadFromBinFile restores a dataset from its binary cache. When loading
// distributed without pre-partitioning, the local rows are re-sampled
// with the same seeded predicate the text path uses, and every feature is
// re-sliced down to them.
func (l *Loader) loadFromBinFile(binFilename string, rank, numMachines int) (ds *dset.Dataset, err error) {
	fl, fileErr := os.OpenFile(binFilename, os.O_RDONLY, 0x444)
	if fileErr != nil {
		err = errors.Wrapf(fileErr, "Could not read binary data from %v", binFilename)
		return
	}
	defer fl.Close()
	stream := newSectionReader(bufio.NewReader(fl))

	ds = dset.NewDataset(l.conf.NumClass, l.conf.IsEnableSparse)
	header, err := stream.next()
	if err != nil {
		err = errors.Wrap(err, "Binary file error: header has the wrong size")
		return
	}
	numFeatures, err := l.readBinHeader(bytes.NewReader(header), ds)
	if err != nil {
		err = errors.Wrapf(err, "Binary file error: header of %v is incorrect", binFilename)
		return
	}

	metadataBytes, err := stream.next()
	if err != nil {
		err = errors.Wrap(err, "Binary file error: meta data has the wrong size")
		return
	}
	ds.Metadata = dset.NewMetadata()
	_, err = ds.Metadata.ReadFrom(bytes.NewReader(metadataBytes))
	if err != nil {
		err = errors.Wrap(err, "Binary file error: meta data is incorrect")
		return
	}

	numGlobalData := ds.NumData
	var usedIndices []int32
	if numMachines > 1 && !l.conf.IsPrePartition {
		used := dsets.NewRowSet()
		keep := l.newPartitionPredicate(ds.Metadata.QueryBoundaries(), ds.Metadata.NumQueries(), rank, numMachines)
		for i := int32(0); i < numGlobalData; i++ {
			if keep(i) {
				used.Add(i)
			}
		}
		usedIndices = used.ToSlice()
		ds.NumData = int32(len(usedIndices))
	}
	err = ds.Metadata.PartitionLabel(usedIndices)
	if err != nil {
		err = errors.Wrap(err, "partitioning reloaded metadata")
		return
	}

	for i := 0; i < numFeatures; i++ {
		var featureBytes []byte
		featureBytes, err = stream.next()
		if err != nil {
			err = errors.Wrapf(err, "Binary file error: feature %v has the wrong size", i)
			return
		}
		var f *dset.Feature
		f, _, err = dset.ReadFeatureFrom(bytes.NewReader(featureBytes), usedIndices)
		if err != nil {
			err = errors.Wrapf(err, "Binary file error: feature %v is incorrect", i)
			return
		}
		ds.Features = append(ds.Features, f)
	}
	ds.LoadedFromBinFile = true
	return
}

func (l *Loader) readBinHeader(r io.Reader, ds *dset.Dataset) (numFeatures int, err error) {
	var i32 int32
	if _, err = serde.Int32ReadFrom(&i32, r); err != nil {
		err = errors.Wrap(err, "reading row count")
		return
	}
	ds.NumData = i32
	if _, err = serde.Int32ReadFrom(&i32, r); err != nil {
		err = errors.Wrap(err, "reading class count")
		return
	}
	ds.NumClass = int(i32)
	if _, err = serde.Int32ReadFrom(&i32, r); err != nil {
		err = errors.Wrap(err, "reading feature count")
		return
	}
	numFeatures = int(i32)
	if _, err = serde.Int32ReadFrom(&i32, r); err != nil {
		err = errors.Wrap(err, "reading total feature count")
		return
	}
	ds.NumTotalFeatures = int(i32)
	var mapLen int64
	if _, err = serde.IntReadFrom(&mapLen, r); err != nil {
		err = errors.Wrap(err, "reading feature map length")
		return
	}
	ds.UsedFeatureMap = make([]int32, mapLen)
	for i := range ds.UsedFeatureMap {
		if _, err = serde.Int32ReadFrom(&ds.UsedFeatureMap[i], r); err != nil {
			err = errors.Wrapf(err, "reading feature map entry #%v", i)
			return
		}
	}
	ds.FeatureNames = make([]string, ds.NumTotalFeatures)
	for i := range ds.FeatureNames {
		if _, err = serde.Int32ReadFrom(&i32, r); err != nil {
			err = errors.Wrapf(err, "reading length of feature name #%v", i)
			return
		}
		name := make([]byte, i32)
		if _, err = io.ReadFull(r, name); err != nil {
			err = errors.Wrapf(err, "reading feature name #%v", i)
			return
		}
		ds.FeatureNames[i] = string(name)
	}
	return
}
