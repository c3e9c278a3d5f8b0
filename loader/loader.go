package loader

import (
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/ovlad32/gbdata/dnet"
	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/meta"
	"github.com/ovlad32/gbdata/misc"
	"github.com/ovlad32/gbdata/sources"
)

var logger = log.New()

func SetLogger(l *log.Logger) {
	logger = l
}

// PredictFunc scores one parsed row with an initial model; the result has
// one entry per class.
type PredictFunc func(pairs []sources.ColumnValue) []float64

// Loader builds Datasets out of text files, binary caches, query results
// or caller-supplied samples. The column roles are resolved once, on the
// first file touched; the random stream is keyed only by the configured
// seed so every machine draws the same partitioning decisions.
type Loader struct {
	conf       meta.LoadConfig
	rnd        *misc.Random
	predictFun PredictFunc
	network    dnet.IAllgatherer
	numThreads int

	headerResolved bool
	labelIdx       int
	weightIdx      int
	groupIdx       int
	ignoreFeatures map[int]bool
	featureNames   []string
}

func NewLoader(conf meta.LoadConfig) *Loader {
	return &Loader{
		conf:           conf,
		rnd:            misc.NewRandom(conf.DataRandomSeed),
		weightIdx:      dset.NO_SPECIFIC,
		groupIdx:       dset.NO_SPECIFIC,
		ignoreFeatures: make(map[int]bool),
		numThreads:     runtime.NumCPU(),
	}
}

// SetPredictFun installs the initial-score model applied during
// extraction.
func (l *Loader) SetPredictFun(f PredictFunc) {
	l.predictFun = f
}

// SetNetwork installs the collective used by distributed bin
// construction. Required when LoadFromFile builds a dataset from text
// with numMachines > 1; a binary reload does not use it.
func (l *Loader) SetNetwork(n dnet.IAllgatherer) {
	l.network = n
}

func (l *Loader) SetNumThreads(n int) {
	if n > 0 {
		l.numThreads = n
	}
}

func (l *Loader) LabelIdx() int {
	return l.labelIdx
}

func (l *Loader) WeightIdx() int {
	return l.weightIdx
}

func (l *Loader) GroupIdx() int {
	return l.groupIdx
}

func (l *Loader) IgnoreFeatures() map[int]bool {
	return l.ignoreFeatures
}

func (l *Loader) FeatureNames() []string {
	return l.featureNames
}
