// Package log provides the shared structured logger for the democtl CLI.
package log

import (
	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

var log = zap.New(zap.UseDevMode(true), func(o *zap.Options) {
	o.TimeEncoder = zapcore.RFC3339TimeEncoder
})

// Logger returns the shared logger for injection into provisioning contexts.
func Logger() logr.Logger {
	return log
}

// Info logs an informational message with structured key/value pairs.
func Info(msg string, keysAndValues ...interface{}) {
	log.Info(msg, keysAndValues...)
}

// Error logs an error with structured key/value pairs.
func Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error(err, msg, keysAndValues...)
}
