package dset

import (
	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func SetLogger(l *log.Logger) {
	logger = l
}

// NO_SPECIFIC marks a column role that has no column assigned to it.
const NO_SPECIFIC = -1
