package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sensevoice-asr/internal/app/api/provider"
	"sensevoice-asr/internal/app/asr"
	"sensevoice-asr/internal/config"

	// Recognition backends register themselves with the provider registry.
	_ "sensevoice-asr/internal/app/api/funasr_cli"
	_ "sensevoice-asr/internal/app/api/gemini"
	_ "sensevoice-asr/internal/app/api/openai/whisper"
	_ "sensevoice-asr/internal/app/api/sensevoice_server"
)

// BackendSpec is the resolved backend and model configuration.
type BackendSpec struct {
	Provider provider.ProviderConfig
	Model    provider.ModelConfig
}

func provideBackendSpec(settings *config.Settings) (BackendSpec, error) {
	cfg, model, err := settings.BackendConfig()
	if err != nil {
		return BackendSpec{}, err
	}
	return BackendSpec{Provider: cfg, Model: model}, nil
}

func provideBackend(spec BackendSpec) (provider.TranscriptionProvider, error) {
	return provider.CreateProvider(spec.Provider)
}

func provideModelHandle(backend provider.TranscriptionProvider, spec BackendSpec, logger *zap.Logger) *asr.ModelHandle {
	return asr.NewModelHandle(backend, spec.Model, logger)
}

func provideStager(settings *config.Settings) *asr.Stager {
	return asr.NewStager(settings.TempDir, settings.MaxUploadBytes())
}

// provideCache connects to Redis when a cache URL is configured. An
// unreachable Redis is only logged; lookups then count as misses.
func provideCache(settings *config.Settings, logger *zap.Logger) (asr.TranscriptCache, func(), error) {
	if !settings.CacheEnabled() {
		return nil, func() {}, nil
	}

	cache, err := asr.NewRedisCache(settings.CacheRedisURL, settings.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("transcript cache: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultCachePingTimeout)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("transcript cache unreachable", zap.Error(err))
	} else {
		logger.Info("transcript cache enabled", zap.Duration("ttl", settings.CacheTTL))
	}

	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("failed to close transcript cache", zap.Error(err))
		}
	}
	return cache, cleanup, nil
}
