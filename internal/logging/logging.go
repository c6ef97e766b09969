// Package logging provides the shared structured logger.
//
// Usage:
//
//	log := logging.NewLogger("server")
//	log.WithField("user_id", id).Info("watchlist updated")
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logrus logger pre-configured for a named component.
// Output is JSON to stdout. Log level comes from LOG_LEVEL (default info).
// The component name is embedded in every log line.
func NewLogger(component string) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetOutput(os.Stdout)

	levelStr := os.Getenv("LOG_LEVEL")
	level, err := logrus.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log.WithField("component", component)
}
