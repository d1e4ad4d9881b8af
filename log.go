package sprite

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// logLevel controls the level of the default logger.
// Default is LevelInfo, which suppresses per-draw Debug messages.
var logLevel = new(slog.LevelVar)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(defaultLogger)
}

// SetVerbose enables or disables debug logging on the default logger.
func SetVerbose(v bool) {
	if v {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelInfo)
	}
}

// SetLogger replaces the package logger used by engines created without
// WithLogger, and by the backends. Pass nil to restore the default stderr
// logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = defaultLogger
	}
	loggerPtr.Store(l)
}

// Logger returns the package logger. Backend packages log through it.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
