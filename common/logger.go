package common

import "io"

// Logger is the logging interface used throughout the module.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger

	// HttpLoggingHandler returns a writer for HTTP access logs.
	// A nil return value disables access logging.
	HttpLoggingHandler() io.Writer
}

// NoopLogger is a Logger that discards everything. Useful in tests.
type NoopLogger struct{}

func (l *NoopLogger) Debug(msg string)                                {}
func (l *NoopLogger) Debugf(format string, args ...interface{})       {}
func (l *NoopLogger) Info(msg string)                                 {}
func (l *NoopLogger) Infof(format string, args ...interface{})        {}
func (l *NoopLogger) Warn(msg string)                                 {}
func (l *NoopLogger) Warnf(format string, args ...interface{})        {}
func (l *NoopLogger) Error(msg string)                                {}
func (l *NoopLogger) Errorf(format string, args ...interface{})       {}
func (l *NoopLogger) WithField(key string, value interface{}) Logger  { return l }
func (l *NoopLogger) WithFields(fields map[string]interface{}) Logger { return l }
func (l *NoopLogger) HttpLoggingHandler() io.Writer                   { return nil }
