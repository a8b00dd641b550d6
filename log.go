package parseas

import (
	"log/slog"
	"sync"

	"github.com/reoring/parseas/load"
)

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
)

// SetLogger routes the package's debug logs (schema synthesis, cache
// eviction, protocol selection in package load) to l. nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
	load.SetLogger(l)
}

func log() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}
