//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"sensevoice-asr/internal/app/asr"
	"sensevoice-asr/internal/config"
)

// InitializeService builds the transcription service and its backend. The
// model is not loaded yet; callers run Handle().Load once at startup.
func InitializeService(settings *config.Settings, logger *zap.Logger) (*asr.Service, func(), error) {
	wire.Build(
		provideBackendSpec,
		provideBackend,
		provideModelHandle,
		provideStager,
		provideCache,
		asr.NewService,
	)
	return nil, nil, nil
}
