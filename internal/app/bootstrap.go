package app

import (
	"go.uber.org/zap"

	"sensevoice-asr/internal/app/common"
	"sensevoice-asr/internal/config"
)

// Bootstrap loads .env, reads the settings, applies override (command line
// flags) and validates the result. The returned logger follows the settings'
// log level and development mode.
func Bootstrap(override func(*config.Settings)) (*config.Settings, *zap.Logger, error) {
	envFile, err := config.LoadEnv()
	if err != nil {
		return nil, nil, err
	}

	settings, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(settings)
	}
	if err := config.Validate(settings); err != nil {
		return nil, nil, err
	}

	logger, err := common.NewLogger(common.LogConfig{
		Level:       settings.LogLevel,
		Format:      settings.LogFormat,
		Development: settings.Development(),
	})
	if err != nil {
		return nil, nil, err
	}
	if envFile != "" {
		logger.Debug("loaded environment file", zap.String("path", envFile))
	}

	return settings, logger, nil
}
