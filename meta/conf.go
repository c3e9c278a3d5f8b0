package meta

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadConfig describes one data source and how to turn it into a Dataset.
// Column roles accept either a zero-based index or a "name:" prefixed
// header name.
type LoadConfig struct {
	DataFile        string `json:"data-file"`
	DbDescFile      string `json:"db-desc-file"`
	DbQuery         string `json:"db-query"`
	ColumnSeparator string `json:"column-separator"`

	HasHeader    bool   `json:"has-header"`
	LabelColumn  string `json:"label-column"`
	WeightColumn string `json:"weight-column"`
	GroupColumn  string `json:"group-column"`
	IgnoreColumn string `json:"ignore-column"`

	MaxBin                int   `json:"max-bin"`
	BinConstructSampleCnt int   `json:"bin-construct-sample-cnt"`
	UseTwoRoundLoading    bool  `json:"two-round-loading"`
	IsPrePartition        bool  `json:"pre-partition"`
	IsEnableSparse        bool  `json:"enable-sparse"`
	NumClass              int   `json:"num-class"`
	DataRandomSeed        int64 `json:"data-random-seed"`

	SaveBinary bool `json:"save-binary"`
}

func DefaultLoadConfig() LoadConfig {
	return LoadConfig{
		ColumnSeparator:       ",",
		MaxBin:                255,
		BinConstructSampleCnt: 200000,
		IsEnableSparse:        true,
		NumClass:              1,
		DataRandomSeed:        1,
	}
}

func (c *LoadConfig) Load(fileName string) (err error) {
	fl, fileErr := os.OpenFile(fileName, os.O_RDONLY, 0x444)
	if fileErr != nil {
		err = errors.Wrapf(fileErr, "Opening file %v", fileName)
		return
	}
	defer fl.Close()
	dec := json.NewDecoder(fl)
	err = dec.Decode(c)
	if err != nil {
		err = errors.Wrapf(err, "Parsing json load config")
		return
	}
	return c.Validate()
}

func (c *LoadConfig) Validate() (err error) {
	if c.MaxBin < 2 || c.MaxBin > 256 {
		err = errors.Errorf("max-bin must stay within [2, 256], got %v", c.MaxBin)
		return
	}
	if c.NumClass < 1 {
		err = errors.Errorf("num-class must be positive, got %v", c.NumClass)
		return
	}
	if c.BinConstructSampleCnt < 1 {
		err = errors.Errorf("bin-construct-sample-cnt must be positive, got %v", c.BinConstructSampleCnt)
		return
	}
	if c.ColumnSeparator == "" {
		c.ColumnSeparator = ","
	}
	return
}
