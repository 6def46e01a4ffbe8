package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"sensevoice-asr/internal/app/api/provider"
	"sensevoice-asr/internal/app/postprocess"
)

// Input is one transcription request.
type Input struct {
	Audio    io.Reader
	Filename string
	Language string
	UseITN   bool
}

// Service runs the stage, recognise, post-process and clean up sequence for
// every request. It holds no per-request state and adds no locking around
// the backend.
type Service struct {
	handle *ModelHandle
	stager *Stager
	cache  TranscriptCache
	logger *zap.Logger

	remove func(string) error
}

// NewService creates the transcription service. cache may be nil.
func NewService(handle *ModelHandle, stager *Stager, cache TranscriptCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		handle: handle,
		stager: stager,
		cache:  cache,
		logger: logger,
		remove: os.Remove,
	}
}

// Handle exposes the model handle.
func (s *Service) Handle() *ModelHandle {
	return s.handle
}

// Transcribe stages the audio, runs the backend and returns display text.
// The staged file is always removed before Transcribe returns.
func (s *Service) Transcribe(ctx context.Context, in Input) (text string, err error) {
	outcome := OutcomeError
	defer func() { RequestsTotal.WithLabelValues(outcome).Inc() }()

	language := in.Language
	if language == "" {
		language = provider.LanguageAuto
	}
	if !provider.IsSupportedLanguage(language) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	backend, err := s.handle.Provider()
	if err != nil {
		return "", err
	}
	backendName := backend.GetProviderInfo().Name

	staged, err := s.stager.Stage(in.Audio, in.Filename)
	if err != nil {
		return "", err
	}
	defer s.cleanup(staged.Path)
	UploadBytes.Observe(float64(staged.Size))

	key := CacheKey(staged.SHA256, language, in.UseITN, backendName)
	if cached, ok := s.lookup(ctx, key); ok {
		outcome = OutcomeCacheHit
		return cached, nil
	}

	start := time.Now()
	resp, err := backend.Transcribe(ctx, &provider.TranscriptionRequest{
		AudioPath: staged.Path,
		Language:  language,
		UseITN:    in.UseITN,
		Filename:  in.Filename,
	})
	InferenceDuration.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("transcription failed",
			zap.String("backend", backendName),
			zap.String("language", language),
			zap.Int64("size", staged.Size),
			zap.Error(err))
		return "", err
	}

	text = postprocess.Rich(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscription
	}

	s.store(ctx, key, text)
	outcome = OutcomeSuccess
	return text, nil
}

func (s *Service) lookup(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	text, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("transcript cache lookup failed", zap.Error(err))
		return "", false
	case !ok:
		CacheLookups.WithLabelValues("miss").Inc()
		return "", false
	default:
		CacheLookups.WithLabelValues("hit").Inc()
		return text, true
	}
}

func (s *Service) store(ctx context.Context, key, text string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, text); err != nil {
		s.logger.Warn("transcript cache store failed", zap.Error(err))
	}
}

func (s *Service) cleanup(path string) {
	if err := s.remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		TempCleanupFailures.Inc()
		s.logger.Warn("failed to remove staged audio", zap.String("path", path), zap.Error(err))
	}
}
