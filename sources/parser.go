package sources

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// delimitedParser handles CSV/TSV-like rows. The label column is consumed
// into the label output and hidden from the cell sequence; columns past it
// are shifted down by one so cell columns are feature indices.
type delimitedParser struct {
	sep      string
	labelIdx int
}

// libsvmParser handles "label col:value ..." rows. Columns are feature
// indices already; no label shift applies.
type libsvmParser struct{}

func (p *delimitedParser) ParseOneLine(line string, out *[]ColumnValue, label *float64) (err error) {
	*out = (*out)[:0]
	tokens := strings.Split(line, p.sep)
	for idx, token := range tokens {
		token = strings.TrimSpace(token)
		var v float64
		if token != "" {
			v, err = strconv.ParseFloat(token, 64)
			if err != nil {
				err = errors.Wrapf(err, "parsing value %q at column %v", token, idx)
				return
			}
		}
		if idx == p.labelIdx {
			*label = v
			continue
		}
		column := idx
		if idx > p.labelIdx {
			column--
		}
		*out = append(*out, ColumnValue{Column: column, Value: v})
	}
	return
}

func (p *libsvmParser) ParseOneLine(line string, out *[]ColumnValue, label *float64) (err error) {
	*out = (*out)[:0]
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		err = errors.New("empty libsvm line")
		return
	}
	*label, err = strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		err = errors.Wrapf(err, "parsing label %q", tokens[0])
		return
	}
	for _, token := range tokens[1:] {
		sep := strings.IndexByte(token, ':')
		if sep < 0 {
			err = errors.Errorf("malformed libsvm pair %q", token)
			return
		}
		var column int
		column, err = strconv.Atoi(token[:sep])
		if err != nil {
			err = errors.Wrapf(err, "parsing column of pair %q", token)
			return
		}
		var v float64
		v, err = strconv.ParseFloat(token[sep+1:], 64)
		if err != nil {
			err = errors.Wrapf(err, "parsing value of pair %q", token)
			return
		}
		*out = append(*out, ColumnValue{Column: column, Value: v})
	}
	return
}

// CreateParser recognizes the format of a sample data line. It returns
// nil when the format cannot be recognized; callers treat that as fatal.
func CreateParser(sampleLine string, labelIdx int) IParser {
	if looksLikeLibsvm(sampleLine) {
		return &libsvmParser{}
	}
	if strings.ContainsRune(sampleLine, '\t') {
		return &delimitedParser{sep: "\t", labelIdx: labelIdx}
	}
	if strings.ContainsRune(sampleLine, ',') {
		return &delimitedParser{sep: ",", labelIdx: labelIdx}
	}
	if strings.ContainsRune(sampleLine, ' ') {
		return &delimitedParser{sep: " ", labelIdx: labelIdx}
	}
	// a single column can only be the label
	if _, err := strconv.ParseFloat(strings.TrimSpace(sampleLine), 64); err == nil {
		return &delimitedParser{sep: ",", labelIdx: labelIdx}
	}
	return nil
}

func looksLikeLibsvm(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return false
	}
	if _, err := strconv.ParseFloat(tokens[0], 64); err != nil {
		return false
	}
	sep := strings.IndexByte(tokens[1], ':')
	if sep <= 0 {
		return false
	}
	if _, err := strconv.Atoi(tokens[1][:sep]); err != nil {
		return false
	}
	_, err := strconv.ParseFloat(tokens[1][sep+1:], 64)
	return err == nil
}
