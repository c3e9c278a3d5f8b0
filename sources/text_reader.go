package sources

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	pb "github.com/cheggaaa/pb"
	lz4 "github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/misc"
)

// lines per block handed to a process function
const processBlockSize = 10000

// max length of one data line
const maxLineBytes = 4 * 1024 * 1024

// TextReader reads a delimited data file line by line. Files with an
// ".lz4" suffix are decompressed transparently. When hasHeader is set the
// first line is kept aside and never counted as data.
type TextReader struct {
	filename  string
	hasHeader bool
	lines     []string
}

func NewTextReader(filename string, hasHeader bool) *TextReader {
	return &TextReader{
		filename:  filename,
		hasHeader: hasHeader,
	}
}

func (t *TextReader) open() (rc io.ReadCloser, scanner *bufio.Scanner, err error) {
	fl, fileErr := os.OpenFile(t.filename, os.O_RDONLY, 0x444)
	if fileErr != nil {
		err = errors.Wrapf(fileErr, "Opening file %v", t.filename)
		return
	}
	rc = fl
	var stream io.Reader = bufio.NewReader(fl)
	if strings.HasSuffix(t.filename, ".lz4") {
		stream = lz4.NewReader(stream)
	}
	scanner = bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	scanner.Split(bufio.ScanLines)
	if t.hasHeader {
		if !scanner.Scan() {
			rc.Close()
			rc = nil
			err = errors.Errorf("File %v has no header line", t.filename)
			return
		}
	}
	return
}

// FirstLine returns the header line, or the first data line when the file
// carries no header.
func (t *TextReader) FirstLine() (line string, err error) {
	fl, fileErr := os.OpenFile(t.filename, os.O_RDONLY, 0x444)
	if fileErr != nil {
		err = errors.Wrapf(fileErr, "Opening file %v", t.filename)
		return
	}
	defer fl.Close()
	var stream io.Reader = bufio.NewReader(fl)
	if strings.HasSuffix(t.filename, ".lz4") {
		stream = lz4.NewReader(stream)
	}
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	if !scanner.Scan() {
		err = errors.Errorf("File %v is empty", t.filename)
		return
	}
	line = scanner.Text()
	return
}

// FirstDataLine returns the first non-empty line after the header.
func (t *TextReader) FirstDataLine() (line string, err error) {
	rc, scanner, err := t.open()
	if err != nil {
		return
	}
	defer rc.Close()
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		line = scanner.Text()
		return
	}
	if scanner.Err() != nil {
		err = errors.WithStack(scanner.Err())
		return
	}
	err = errors.Errorf("File %v holds no data lines", t.filename)
	return
}

// CountLine counts the data lines without keeping them.
func (t *TextReader) CountLine() (count int32, err error) {
	rc, scanner, err := t.open()
	if err != nil {
		return
	}
	defer rc.Close()
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		count++
	}
	err = errors.WithStack(scanner.Err())
	return
}

// ReadAllLines loads every data line into memory and returns the global
// line count.
func (t *TextReader) ReadAllLines() (count int32, err error) {
	return t.ReadAndFilterLines(nil, nil)
}

// ReadAndFilterLines loads the data lines accepted by keep, appending the
// accepted global line indices to usedIndices. The returned count is the
// global one. A nil keep accepts everything.
func (t *TextReader) ReadAndFilterLines(keep func(int32) bool, usedIndices *[]int32) (count int32, err error) {
	rc, scanner, err := t.open()
	if err != nil {
		return
	}
	defer rc.Close()
	t.lines = t.lines[:0]
	startTime := time.Now()
	tickTime := startTime
	tickLineNumber := int32(0)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		lineIdx := count
		count++
		if keep == nil || keep(lineIdx) {
			t.lines = append(t.lines, scanner.Text())
			if usedIndices != nil {
				*usedIndices = append(*usedIndices, lineIdx)
			}
		}
		if time.Since(tickTime).Seconds() >= 1 {
			tickTime = time.Now()
			logger.Infof("Read %v lines. Speed %v lps", count, count-tickLineNumber)
			tickLineNumber = count
		}
	}
	if scanner.Err() != nil {
		err = errors.WithStack(scanner.Err())
		return
	}
	return
}

// Lines moves the loaded lines out of the reader.
func (t *TextReader) Lines() []string {
	out := t.lines
	t.lines = nil
	return out
}

// SampleFromFile draws a reservoir sample of up to k data lines and
// returns the global line count.
func (t *TextReader) SampleFromFile(rng *misc.Random, k int, out *[]string) (count int32, err error) {
	return t.SampleAndFilterFromFile(nil, nil, rng, k, out)
}

// SampleAndFilterFromFile draws a reservoir sample of up to k lines among
// the lines accepted by keep, appending accepted global indices to
// usedIndices. The returned count is the global one.
func (t *TextReader) SampleAndFilterFromFile(keep func(int32) bool, usedIndices *[]int32,
	rng *misc.Random, k int, out *[]string) (count int32, err error) {
	rc, scanner, err := t.open()
	if err != nil {
		return
	}
	defer rc.Close()
	*out = (*out)[:0]
	kept := int32(0)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		lineIdx := count
		count++
		if keep != nil && !keep(lineIdx) {
			continue
		}
		if usedIndices != nil {
			*usedIndices = append(*usedIndices, lineIdx)
		}
		if int(kept) < k {
			*out = append(*out, scanner.Text())
		} else {
			j := rng.NextInt(0, int(kept)+1)
			if j < k {
				(*out)[j] = scanner.Text()
			}
		}
		kept++
	}
	if scanner.Err() != nil {
		err = errors.WithStack(scanner.Err())
		return
	}
	return
}

// ReadPartAndProcessParallel streams only the given ascending global line
// indices in blocks; process receives the start offset of each block
// within the kept sequence.
func (t *TextReader) ReadPartAndProcessParallel(indices []int32, process func(int32, []string)) (err error) {
	rc, scanner, err := t.open()
	if err != nil {
		return
	}
	defer rc.Close()
	bar := pb.StartNew(len(indices))
	defer bar.Finish()
	block := make([]string, 0, processBlockSize)
	blockStart := int32(0)
	pos := 0
	lineIdx := int32(0)
	for scanner.Scan() && pos < len(indices) {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if lineIdx == indices[pos] {
			block = append(block, scanner.Text())
			pos++
			bar.Increment()
			if len(block) >= processBlockSize {
				process(blockStart, block)
				blockStart += int32(len(block))
				block = block[:0]
			}
		}
		lineIdx++
	}
	if scanner.Err() != nil {
		err = errors.WithStack(scanner.Err())
		return
	}
	if len(block) > 0 {
		process(blockStart, block)
	}
	if pos < len(indices) {
		err = errors.Errorf("File %v ended before row %v could be read", t.filename, indices[pos])
	}
	return
}

// ReadAllAndProcessParallel streams every data line in blocks; process
// receives the global start index of each block.
func (t *TextReader) ReadAllAndProcessParallel(process func(int32, []string)) (err error) {
	rc, scanner, err := t.open()
	if err != nil {
		return
	}
	defer rc.Close()
	block := make([]string, 0, processBlockSize)
	blockStart := int32(0)
	startTime := time.Now()
	tickTime := startTime
	tickLineNumber := int32(0)
	count := int32(0)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		count++
		block = append(block, scanner.Text())
		if len(block) >= processBlockSize {
			process(blockStart, block)
			blockStart += int32(len(block))
			block = block[:0]
		}
		if time.Since(tickTime).Seconds() >= 1 {
			tickTime = time.Now()
			logger.Infof("Processed %v lines. Speed %v lps", count, count-tickLineNumber)
			tickLineNumber = count
		}
	}
	if scanner.Err() != nil {
		err = errors.WithStack(scanner.Err())
		return
	}
	if len(block) > 0 {
		process(blockStart, block)
	}
	return
}
