package common

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Logger on top of logrus.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a logrus backed Logger writing to stdout.
// verbose enables debug level logging, logJSON switches to the JSON formatter.
func NewLogger(verbose, logJSON bool) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if logJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debug(msg string)                          { l.entry.Debug(msg) }
func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Info(msg string)                           { l.entry.Info(msg) }
func (l *LogrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warn(msg string)                           { l.entry.Warn(msg) }
func (l *LogrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Error(msg string)                          { l.entry.Error(msg) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}

// HttpLoggingHandler exposes the underlying logger as a writer, so HTTP access
// logs end up in the same stream as everything else.
func (l *LogrusLogger) HttpLoggingHandler() io.Writer {
	return l.entry.Logger.WriterLevel(logrus.InfoLevel)
}
