package common

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json", "console"; empty picks by Development
	Development bool
}

// NewLogger creates a new zap logger with appropriate configuration
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var config zap.Config

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
		if cfg.Development {
			format = "console"
		}
	}

	if format == "console" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	config.Level = level

	return config.Build()
}
