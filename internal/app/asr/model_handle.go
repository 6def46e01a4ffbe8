package asr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"sensevoice-asr/internal/app/api/provider"
)

// ModelHandle owns the process-wide recogniser. Load runs at most once;
// afterwards the handle is read-only and shared by all requests.
type ModelHandle struct {
	backend provider.TranscriptionProvider
	model   provider.ModelConfig
	logger  *zap.Logger

	once   sync.Once
	err    error
	loaded atomic.Bool
}

// NewModelHandle wraps a backend and the model configuration it is loaded with.
func NewModelHandle(backend provider.TranscriptionProvider, model provider.ModelConfig, logger *zap.Logger) *ModelHandle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelHandle{backend: backend, model: model, logger: logger}
}

// Load loads the model. Later calls return the first call's result without
// touching the backend again.
func (h *ModelHandle) Load(ctx context.Context) error {
	h.once.Do(func() {
		info := h.backend.GetProviderInfo()
		start := time.Now()
		h.logger.Info("loading model",
			zap.String("backend", info.Name),
			zap.String("model", h.model.Model),
			zap.String("device", h.model.Device),
			zap.String("vad_model", h.model.VADModel))

		if loader, ok := h.backend.(provider.ModelLoader); ok {
			if err := loader.LoadModel(ctx, h.model); err != nil {
				h.err = fmt.Errorf("failed to load model %s on %s: %w", h.model.Model, info.Name, err)
				return
			}
		}

		h.loaded.Store(true)
		h.logger.Info("model loaded", zap.String("backend", info.Name), zap.Duration("elapsed", time.Since(start)))
	})
	return h.err
}

// Loaded reports whether Load has succeeded.
func (h *ModelHandle) Loaded() bool {
	return h.loaded.Load()
}

// Provider returns the loaded backend.
func (h *ModelHandle) Provider() (provider.TranscriptionProvider, error) {
	if !h.loaded.Load() {
		return nil, ErrModelNotLoaded
	}
	return h.backend, nil
}

// BackendName is the registry name of the wrapped backend.
func (h *ModelHandle) BackendName() string {
	return h.backend.GetProviderInfo().Name
}

// Model returns the model configuration.
func (h *ModelHandle) Model() provider.ModelConfig {
	return h.model
}
