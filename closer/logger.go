package closer

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	nopLogger = zap.NewNop()
	logger    atomic.Pointer[zap.Logger]
)

// Logger returns the package logger, a no-op logger until SetLogger installs
// another one.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger installs l as the package logger and returns the previous one.
// A nil l restores the no-op logger.
func SetLogger(l *zap.Logger) *zap.Logger {
	prev := logger.Swap(l)
	if prev == nil {
		prev = nopLogger
	}
	return prev
}
