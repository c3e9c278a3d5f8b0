package sources

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func SetLogger(l *log.Logger) {
	logger = l
}

// ColumnValue is one parsed cell: the feature column (post label removal
// for delimited formats) and its raw value.
type ColumnValue struct {
	Column int
	Value  float64
}

// IParser turns one text line into its feature cells and label.
type IParser interface {
	ParseOneLine(line string, out *[]ColumnValue, label *float64) error
}

// SplitLine splits a header or data line on any of the supported
// delimiters: tab, comma or space.
func SplitLine(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == '\t' || r == ',' || r == ' '
	})
}
