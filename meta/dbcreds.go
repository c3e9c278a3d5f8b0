package meta

import (
	"database/sql"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// DbCredsDesc points at a relational source a dataset can be dumped from.
type DbCredsDesc struct {
	Driver           string `json:"driver"`
	ConnectionString string `json:"connection-string"`
}

func (dbCreds *DbCredsDesc) readJson(jsonStream io.Reader) (err error) {
	dec := json.NewDecoder(jsonStream)
	err = dec.Decode(&dbCreds)
	if err != nil {
		err = errors.WithStack(err)
		return
	}
	return
}

func (dbCreds *DbCredsDesc) Load(fileName string) (err error) {
	fl, fileErr := os.OpenFile(fileName, os.O_RDONLY, 0x444)
	if fileErr != nil {
		err = errors.Wrapf(fileErr, "Opening file %v", fileName)
		return err
	}
	defer fl.Close()
	err = dbCreds.readJson(fl)
	if err != nil {
		err = errors.Wrapf(err, "Parsing json dbCreds details")
		return
	}
	return
}

func (dbCreds DbCredsDesc) RunQuery(consumerFunc func(r *sql.Rows) error, query string, args ...interface{}) (err error) {
	db, err := sql.Open(dbCreds.Driver, dbCreds.ConnectionString)
	if err != nil {
		err = errors.Wrapf(err, "connecting to the source db")
		return
	}
	defer db.Close()
	rows, err := db.Query(query, args...)
	if err != nil {
		err = errors.Wrapf(err, "running query")
		return
	}
	defer rows.Close()
	err = consumerFunc(rows)
	if err != nil {
		return err
	}
	if err = rows.Err(); err != nil {
		err = errors.Wrapf(err, "iterating over rows")
		return
	}
	return
}
