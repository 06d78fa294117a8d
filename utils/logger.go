package utils

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger provides structured, leveled logging throughout the application.
// Every line carries the run_id of the pipeline run that produced it.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a text Logger at info level writing to stdout.
func NewLogger() *Logger {
	return NewLoggerFor("development", "info")
}

// NewLoggerFor creates a Logger for the given environment and level name.
// Production environments log JSON, everything else coloured text.
func NewLoggerFor(environment, level string) *Logger {
	base := &logrus.Logger{
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}

	if strings.EqualFold(environment, "production") {
		base.Formatter = &logrus.JSONFormatter{}
	} else {
		base.Formatter = &logrus.TextFormatter{
			ForceColors:      true,
			FullTimestamp:    true,
			TimestampFormat:  "2006-01-02 15:04:05",
			QuoteEmptyFields: true,
		}
	}

	if lvl, err := logrus.ParseLevel(level); err == nil {
		base.Level = lvl
	} else {
		base.WithField("level", level).Warn("unknown log level, using info")
	}

	return &Logger{entry: base.WithField("run_id", uuid.New().String())}
}

// With returns a child Logger carrying an extra field.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
