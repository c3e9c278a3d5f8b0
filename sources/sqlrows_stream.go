package sources

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type IRowHandler interface {
	Handle(cx context.Context, rowNumber int32, values []string) error
}

// SqlRowsStream feeds every row of a query result to rh. NULLs arrive as
// empty strings.
func SqlRowsStream(
	cx context.Context,
	stream *sql.Rows,
	rh IRowHandler,
) (rowCount int32, err error) {
	var valueRefs []interface{}
	var sqlValues []sql.NullString
	var stringValues []string
	startTime := time.Now()
	tickTime := startTime
	tickRowNumber := int32(0)
	for stream.Next() {
		rowCount++
		if valueRefs == nil {
			columns, erre := stream.Columns()
			if erre != nil {
				err = errors.Wrapf(erre, "Reading number of columns")
				return
			}
			valueRefs = make([]interface{}, len(columns))
			sqlValues = make([]sql.NullString, len(valueRefs))
			stringValues = make([]string, len(valueRefs))
			for i := range valueRefs {
				valueRefs[i] = &sqlValues[i]
			}
		}
		err = stream.Scan(valueRefs...)
		if err != nil {
			err = errors.Wrapf(err, "scanning row #%v", rowCount)
			return
		}
		for i := range sqlValues {
			if !sqlValues[i].Valid {
				stringValues[i] = ""
			} else {
				stringValues[i] = sqlValues[i].String
			}
		}
		err = rh.Handle(cx, rowCount, stringValues)
		if err != nil {
			err = errors.WithStack(err)
			return
		}
		if time.Since(tickTime).Seconds() >= 1 {
			tickTime = time.Now()
			logger.Infof("Fetched %v rows. Speed %v rps", rowCount, rowCount-tickRowNumber)
			tickRowNumber = rowCount
		}
	}
	if stream.Err() != nil {
		err = errors.WithStack(stream.Err())
		return
	}
	return
}

// LineCollector joins each row's values with a separator, producing the
// same line shape the text path reads from a dump file.
type LineCollector struct {
	Separator string
	Lines     []string
}

func (c *LineCollector) Handle(cx context.Context, rowNumber int32, values []string) error {
	c.Lines = append(c.Lines, strings.Join(values, c.Separator))
	return nil
}
