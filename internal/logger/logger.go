// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once sync.Once
	log  *zap.SugaredLogger
)

// Init builds the logger. Call once from main; debug enables
// development output.
func Init(debug bool) {
	once.Do(func() {
		var (
			l   *zap.Logger
			err error
		)
		if debug {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			l = zap.NewNop()
		}
		zap.ReplaceGlobals(l)
		log = l.Sugar()
	})
}

// L returns the process logger; a no-op logger before Init.
func L() *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
