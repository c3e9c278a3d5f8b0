package main

import (
	"flag"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/loader"
	"github.com/ovlad32/gbdata/meta"
	"github.com/ovlad32/gbdata/sources"
)

/*
go run . -mode=load -conf=./load.conf.json -data=./train.csv
go run . -mode=load -conf=./load.conf.json -data=./train.csv -machines=4 -rank=2
go run . -mode=align -conf=./load.conf.json -data=./train.csv -validation=./valid.csv
go run . -mode=loaddb -conf=./load.conf.json
*/

var logger = log.New()

var mode string
var confFile string
var dataFile string
var validationFile string
var rank int
var numMachines int
var numThreads int

func init() {
	flag.StringVar(&mode, "mode", "", "usage mode: load,align,loaddb")
	flag.StringVar(&confFile, "conf", "./load.conf.json", "load config json file")
	flag.StringVar(&dataFile, "data", "", "data file; overrides the config's data-file")
	flag.StringVar(&validationFile, "validation", "", "validation data file for align mode")
	flag.IntVar(&rank, "rank", 0, "rank of this machine")
	flag.IntVar(&numMachines, "machines", 1, "number of cooperating machines")
	flag.IntVar(&numThreads, "threads", 0, "worker pool size; 0 keeps the default")

	flag.Parse()
	logger.Out = os.Stdout

	dset.SetLogger(logger)
	loader.SetLogger(logger)
	meta.SetLogger(logger)
	sources.SetLogger(logger)
}

func main() {
	logger.SetLevel(log.DebugLevel)
	logger.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	conf := meta.DefaultLoadConfig()
	err := conf.Load(confFile)
	if err != nil {
		err = errors.Wrap(err, "couldn't load config file")
		log.Fatal(err)
	}
	if dataFile != "" {
		conf.DataFile = dataFile
	}

	switch strings.ToLower(mode) {
	case "load":
		if conf.DataFile == "" {
			log.Fatal("Data file has not been specified")
		}
		if err = main_load(conf); err != nil {
			log.Fatalf("%+v", err)
		}
	case "align":
		if conf.DataFile == "" {
			log.Fatal("Training data file has not been specified")
		}
		if validationFile == "" {
			log.Fatal("Validation data file has not been specified")
		}
		if err = main_align(conf); err != nil {
			log.Fatalf("%+v", err)
		}
	case "loaddb":
		if conf.DbDescFile == "" || conf.DbQuery == "" {
			log.Fatal("Both db-desc-file and db-query must be configured for loaddb mode")
		}
		if err = main_loaddb(conf); err != nil {
			log.Fatalf("%+v", err)
		}
	default:
		flag.PrintDefaults()
		log.Fatalf("\n\nunknown mode: %v", mode)
	}
}
