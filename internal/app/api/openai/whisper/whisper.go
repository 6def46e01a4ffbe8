package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	openaiclient "sensevoice-asr/internal/app/api/openai"
	"sensevoice-asr/internal/app/api/provider"
)

const providerName = "openai"

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	config OpenAIProviderConfig
}

// OpenAIProviderConfig represents configuration specific to OpenAI Whisper provider
type OpenAIProviderConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Prompt      string        `yaml:"prompt"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(config OpenAIProviderConfig) *RemoteTranscriber {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	var httpClient *http.Client
	if config.Timeout > 0 {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &RemoteTranscriber{
		client: openaiclient.NewClient(config.APIKey, config.BaseURL, httpClient),
		config: config,
	}
}

// NewRemoteTranscriberFromConfig creates a transcriber from generic settings
func NewRemoteTranscriberFromConfig(cfg provider.ProviderConfig) (*RemoteTranscriber, error) {
	config := OpenAIProviderConfig{
		APIKey:  cfg.Auth.APIKey,
		Timeout: cfg.Timeout(),
	}
	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v, ok := cfg.String("model"); ok {
		config.Model = v
	}
	if v, ok := cfg.String("prompt"); ok {
		config.Prompt = v
	}
	if v, ok := cfg.String("base_url"); ok {
		config.BaseURL = v
	}
	if v, ok := cfg.Settings["temperature"].(float64); ok {
		config.Temperature = float32(v)
	}
	return NewRemoteTranscriber(config), nil
}

// Transcribe uploads the staged file to the transcription endpoint. The
// "auto" hint is sent as no language so the API detects it.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request == nil || request.AudioPath == "" {
		return nil, provider.NewError(providerName, provider.CodeInvalidInput, false, "input file path is required")
	}
	if _, err := os.Stat(request.AudioPath); os.IsNotExist(err) {
		return nil, provider.NewError(providerName, provider.CodeFileNotFound, false, "input file not found: %s", request.AudioPath)
	}

	audioRequest := openai.AudioRequest{
		Model:       rt.config.Model,
		FilePath:    request.AudioPath,
		Prompt:      rt.config.Prompt,
		Temperature: rt.config.Temperature,
		Format:      openai.AudioResponseFormatJSON,
	}
	if lang := request.Language; lang != "" && lang != provider.LanguageAuto && lang != "nospeech" {
		audioRequest.Language = lang
	}

	resp, err := rt.client.CreateTranscription(ctx, audioRequest)
	if err != nil {
		return nil, handleAPIError(ctx, err)
	}

	return &provider.TranscriptionResponse{
		Text:           resp.Text,
		Language:       resp.Language,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      rt.config.Model,
		ProviderMetadata: map[string]interface{}{
			"api_model": audioRequest.Model,
			"duration":  resp.Duration,
		},
	}, nil
}

// handleAPIError converts OpenAI API errors to TranscriptionError
func handleAPIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		e := provider.NewError(providerName, provider.CodeContextExpired, false, "request aborted: %v", ctxErr)
		e.Cause = err
		return e
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		var e *provider.TranscriptionError
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			e = provider.NewError(providerName, provider.CodeNotConfigured, false, "OpenAI API key is invalid or missing")
		case http.StatusTooManyRequests:
			e = provider.NewError(providerName, provider.CodeAPIError, true, "OpenAI API rate limit exceeded")
		case http.StatusRequestEntityTooLarge:
			e = provider.NewError(providerName, provider.CodeInvalidInput, false, "audio file is too large for OpenAI API")
		case http.StatusBadRequest:
			e = provider.NewError(providerName, provider.CodeInvalidInput, false, "invalid audio file: %s", apiErr.Message)
		default:
			e = provider.NewError(providerName, provider.CodeAPIError, apiErr.HTTPStatusCode >= 500, "OpenAI API error: %s", apiErr.Message)
		}
		e.Cause = err
		return e
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		e := provider.NewError(providerName, provider.CodeAPIError, reqErr.HTTPStatusCode >= 500,
			"OpenAI request failed with status %d", reqErr.HTTPStatusCode)
		e.Cause = err
		return e
	}

	e := provider.NewError(providerName, provider.CodeRequestFailed, true, "transcription failed: %v", err)
	e.Cause = err
	return e
}

// GetProviderInfo returns metadata about the OpenAI provider
func (rt *RemoteTranscriber) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "OpenAI Whisper API",
		Type:        provider.ProviderTypeRemote,
		Version:     "1.0.0",
		SupportedFormats: []provider.AudioFormat{
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatWAV,
			provider.FormatWEBM,
			provider.FormatFLAC,
			provider.FormatOGG,
		},
		SupportsLanguageDetection: true,
		RequiresInternet:          true,
		RequiresAPIKey:            true,
		DefaultModel:              openai.Whisper1,
	}
}

// ValidateConfiguration validates the provider configuration
func (rt *RemoteTranscriber) ValidateConfiguration() error {
	if rt.config.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (auth.api_key or OPENAI_API_KEY)")
	}
	if rt.config.Temperature < 0 || rt.config.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0")
	}
	return nil
}

// HealthCheck lists models as a lightweight connectivity probe.
func (rt *RemoteTranscriber) HealthCheck(ctx context.Context) error {
	if err := rt.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := rt.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API health check failed: %w", err)
	}
	return nil
}
