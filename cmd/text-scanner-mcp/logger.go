package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/text-scanner-mcp/internal/config"
)

// newLogger logs to stderr; stdout carries the MCP protocol.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(cfg.Level())
	return log
}
