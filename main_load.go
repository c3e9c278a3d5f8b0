package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/loader"
	"github.com/ovlad32/gbdata/meta"
)

func main_load(conf meta.LoadConfig) (err error) {
	loadStartTime := time.Now()
	l := loader.NewLoader(conf)
	if numThreads > 0 {
		l.SetNumThreads(numThreads)
	}
	logger.Infof("Start loading %v", conf.DataFile)
	ds, err := l.LoadFromFile(conf.DataFile, rank, numMachines)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	reportDataset(ds)
	logger.Infof("Finish loading. Total time: %v", time.Since(loadStartTime))
	return
}

func main_align(conf meta.LoadConfig) (err error) {
	alignStartTime := time.Now()
	l := loader.NewLoader(conf)
	if numThreads > 0 {
		l.SetNumThreads(numThreads)
	}
	logger.Infof("Start loading training data %v", conf.DataFile)
	train, err := l.LoadFromFile(conf.DataFile, 0, 1)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	reportDataset(train)
	logger.Infof("Start loading validation data %v aligned with the training data", validationFile)
	valid, err := l.LoadFromFileAlignedWith(validationFile, train)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	reportDataset(valid)
	logger.Infof("Finish align loading. Total time: %v", time.Since(alignStartTime))
	return
}

func main_loaddb(conf meta.LoadConfig) (err error) {
	loadStartTime := time.Now()
	ctx := context.TODO()
	creds := &meta.DbCredsDesc{}
	logger.Info("Reading datasource configuration...")
	err = creds.Load(conf.DbDescFile)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	l := loader.NewLoader(conf)
	if numThreads > 0 {
		l.SetNumThreads(numThreads)
	}
	var ds *dset.Dataset
	logger.Info("Start loading. Requesting data from the database...")
	err = creds.RunQuery(
		func(rows *sql.Rows) (err error) {
			ds, err = l.LoadFromRows(ctx, rows)
			return err
		},
		conf.DbQuery,
	)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	reportDataset(ds)
	logger.Infof("Finish loading from database. Total time: %v", time.Since(loadStartTime))
	return
}

func reportDataset(ds *dset.Dataset) {
	logger.Infof("Loaded %v rows, %v used features out of %v observed columns",
		ds.NumData, ds.NumFeatures(), ds.NumTotalFeatures)
	if ds.LoadedFromBinFile {
		logger.Info("Dataset was restored from the binary cache")
	}
	if qb := ds.Metadata.QueryBoundaries(); qb != nil {
		logger.Infof("Dataset holds %v query groups", ds.Metadata.NumQueries())
	}
}
