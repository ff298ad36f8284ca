package typal

import (
	"sync"

	"github.com/rs/zerolog"
)

var (
	loggerMu      sync.RWMutex
	currentLogger = zerolog.Nop()
)

// SetLogger replaces the package logger used by typal and its subpackages.
// The default discards everything.
func SetLogger(l zerolog.Logger) {
	loggerMu.Lock()
	currentLogger = l
	loggerMu.Unlock()
}

// Log returns the current package logger.
func Log() *zerolog.Logger {
	loggerMu.RLock()
	l := currentLogger
	loggerMu.RUnlock()
	return &l
}
