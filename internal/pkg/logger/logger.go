// internal/pkg/logger/logger.go
package logger

import (
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/sirupsen/logrus"
)

// New creates a configured logrus logger. One instance is shared by the
// services that need to report degraded side effects (notifications, PDF
// rendering) without failing the workflow.
func New(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
