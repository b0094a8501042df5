package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a new structured logger with the specified debug level
func New(debug bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, debug)
}

// NewWithOutput creates a structured logger writing to out
func NewWithOutput(out io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}

// Discard returns a logger that drops everything, used when no diagnostics sink is configured
func Discard() *logrus.Logger {
	logger := NewWithOutput(io.Discard, false)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
