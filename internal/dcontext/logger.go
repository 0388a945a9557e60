// Package dcontext provides a leveled logger that can be attached to and
// retrieved from a context.Context, following the logging conventions used
// throughout this module's packages.
package dcontext

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger   = logrus.StandardLogger().WithField("module", "gopreservica")
	defaultLoggerMu sync.RWMutex
)

// Logger is the leveled-logging interface used across this module.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)

	Info(args ...any)
	Infof(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	WithField(key string, value any) *logrus.Entry
	WithError(err error) *logrus.Entry
}

type loggerKey struct{}

// WithLogger returns a new context carrying the supplied logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// SetDefaultLogger replaces the package's default logger. Only a
// *logrus.Entry is accepted; any other Logger leaves the default unchanged.
func SetDefaultLogger(logger Logger) {
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = entry
	defaultLoggerMu.Unlock()
}

// GetLogger returns the logger attached to ctx if it is a *logrus.Entry,
// otherwise the package default, with the given keys resolved from ctx and
// attached as fields.
func GetLogger(ctx context.Context, keys ...any) Logger {
	var logger *logrus.Entry

	if v := ctx.Value(loggerKey{}); v != nil {
		if lgr, ok := v.(*logrus.Entry); ok {
			logger = lgr
		}
	}

	if logger == nil {
		defaultLoggerMu.RLock()
		logger = defaultLogger
		defaultLoggerMu.RUnlock()
	}

	fields := logrus.Fields{}
	for _, key := range keys {
		if v := ctx.Value(key); v != nil {
			fields[fmt.Sprint(key)] = v
		}
	}
	return logger.WithFields(fields)
}
