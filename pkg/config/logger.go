package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the service logger. JSON output, info level unless
// LOG_LEVEL says otherwise.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level := logrus.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := logrus.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	log.SetLevel(level)

	return log
}
