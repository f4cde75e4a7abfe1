package logger

import (
	"os"
	"time"

	"charity-receipts/internal/config"

	"github.com/rs/zerolog"
)

// New constructs a zerolog.Logger from the log configuration.
func New(cfg *config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}
