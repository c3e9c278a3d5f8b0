package meta

import (
	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func SetLogger(l *log.Logger) {
	logger = l
}
