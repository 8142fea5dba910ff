// Package logging builds the process logger from configuration.
package logging

import (
	"os"
	"strings"

	"fleet-dashboard/internal/config"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout with the configured level and
// format. An unparsable level falls back to info.
func New(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
