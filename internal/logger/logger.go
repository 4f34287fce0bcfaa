package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the structured logger injected into every engine and
// detector. The library never owns log files; output goes to stderr and the
// host redirects as it sees fit.
func NewLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
