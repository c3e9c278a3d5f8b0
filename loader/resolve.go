package loader

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/sources"
)

const namePrefix = "name:"

// SetHeader resolves the configured column roles against the data file's
// header. Must run before any load; LoadFromFile calls it lazily.
func (l *Loader) SetHeader(filename string) (err error) {
	name2idx := make(map[string]int)
	if l.conf.HasHeader {
		reader := sources.NewTextReader(filename, l.conf.HasHeader)
		var firstLine string
		firstLine, err = reader.FirstLine()
		if err != nil {
			err = errors.WithStack(err)
			return
		}
		l.featureNames = sources.SplitLine(firstLine)
		for i, name := range l.featureNames {
			name2idx[name] = i
		}
	}
	return l.resolveRoles(name2idx)
}

// resolveRoles maps the four role strings to final column indices. All
// weight/group/ignore indices end up in post-label-removal coordinates.
func (l *Loader) resolveRoles(name2idx map[string]int) (err error) {
	l.labelIdx = 0
	if l.conf.LabelColumn != "" {
		l.labelIdx, err = resolveColumnSpec(l.conf.LabelColumn, name2idx, "label")
		if err != nil {
			return
		}
		logger.Infof("Using column %v as label", l.conf.LabelColumn)
	}
	if len(l.featureNames) > 0 {
		if l.labelIdx >= len(l.featureNames) {
			err = errors.Errorf("label column index %v is out of the header's %v columns",
				l.labelIdx, len(l.featureNames))
			return
		}
		l.featureNames = append(l.featureNames[:l.labelIdx], l.featureNames[l.labelIdx+1:]...)
	}

	if l.conf.IgnoreColumn != "" {
		spec := l.conf.IgnoreColumn
		if strings.HasPrefix(spec, namePrefix) {
			for _, name := range strings.Split(spec[len(namePrefix):], ",") {
				idx, found := name2idx[name]
				if !found {
					err = errors.Errorf("Could not find ignore column %v in data file", name)
					return
				}
				l.ignoreFeatures[l.shiftForLabel(idx)] = true
			}
		} else {
			for _, token := range strings.Split(spec, ",") {
				idx, atoiErr := strconv.Atoi(token)
				if atoiErr != nil || idx < 0 {
					err = errors.Errorf("ignore_column is not a number, if you want to use a column name, please add the prefix \"name:\" to the column name")
					return
				}
				l.ignoreFeatures[l.shiftForLabel(idx)] = true
			}
		}
	}

	if l.conf.WeightColumn != "" {
		l.weightIdx, err = resolveColumnSpec(l.conf.WeightColumn, name2idx, "weight")
		if err != nil {
			return
		}
		logger.Infof("Using column %v as weight", l.conf.WeightColumn)
		l.weightIdx = l.shiftForLabel(l.weightIdx)
		l.ignoreFeatures[l.weightIdx] = true
	}

	if l.conf.GroupColumn != "" {
		l.groupIdx, err = resolveColumnSpec(l.conf.GroupColumn, name2idx, "group")
		if err != nil {
			return
		}
		logger.Infof("Using column %v as group/query id", l.conf.GroupColumn)
		l.groupIdx = l.shiftForLabel(l.groupIdx)
		l.ignoreFeatures[l.groupIdx] = true
	}
	l.headerResolved = true
	return
}

// shiftForLabel converts an original column number to its
// post-label-removal coordinate.
func (l *Loader) shiftForLabel(idx int) int {
	if idx > l.labelIdx {
		return idx - 1
	}
	return idx
}

func resolveColumnSpec(spec string, name2idx map[string]int, role string) (idx int, err error) {
	if strings.HasPrefix(spec, namePrefix) {
		name := spec[len(namePrefix):]
		var found bool
		if idx, found = name2idx[name]; !found {
			err = errors.Errorf("Could not find %v column %v in data file", role, name)
		}
		return
	}
	idx, atoiErr := strconv.Atoi(spec)
	if atoiErr != nil || idx < 0 {
		err = errors.Errorf("%v_column is not a number, if you want to use a column name, please add the prefix \"name:\" to the column name", role)
	}
	return
}
