// Package log provides the module's structured logger, a thin facade over
// logrus so callers never import the backend directly.
package log

import "sync"

type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	mu     sync.RWMutex
	logger Logger = newLogrusLogger()
)

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init reconfigures the process-wide logger. Safe to call once at startup;
// loggers handed out earlier keep writing to the same backend.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()
	return logger.(*logrusLogger).configure(cfg)
}
