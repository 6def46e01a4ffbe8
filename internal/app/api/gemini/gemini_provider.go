package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"sensevoice-asr/internal/app/api/provider"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"
)

// GeminiProvider transcribes audio through Gemini's audio understanding.
type GeminiProvider struct {
	client *genai.Client
	config GeminiConfig
}

// GeminiConfig represents configuration for the Gemini provider
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

var languageNames = map[string]string{
	"zh":  "Mandarin Chinese",
	"en":  "English",
	"yue": "Cantonese",
	"ja":  "Japanese",
	"ko":  "Korean",
}

// NewGeminiProvider creates a provider backed by the Gemini API.
func NewGeminiProvider(ctx context.Context, config GeminiConfig) (*GeminiProvider, error) {
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.APIKey == "" {
		return nil, errors.New("Gemini API key is required (auth.api_key or GEMINI_API_KEY)")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, config: config}, nil
}

// NewGeminiProviderFromConfig creates provider from generic settings
func NewGeminiProviderFromConfig(cfg provider.ProviderConfig) (*GeminiProvider, error) {
	config := GeminiConfig{APIKey: cfg.Auth.APIKey, Timeout: cfg.Timeout()}
	if config.APIKey == "" {
		config.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if v, ok := cfg.String("model"); ok {
		config.Model = v
	}
	if v, ok := cfg.String("base_url"); ok {
		config.BaseURL = v
	}
	return NewGeminiProvider(context.Background(), config)
}

// Transcribe sends the staged audio inline with a transcription prompt.
func (g *GeminiProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request == nil || request.AudioPath == "" {
		return nil, provider.NewError(providerName, provider.CodeInvalidInput, false, "input file path is required")
	}
	data, err := os.ReadFile(request.AudioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, provider.NewError(providerName, provider.CodeFileNotFound, false, "input file not found: %s", request.AudioPath)
		}
		return nil, provider.NewError(providerName, provider.CodeInvalidInput, false, "failed to read audio: %v", err)
	}

	mimeType := provider.GetAudioFormatFromFilename(request.AudioPath).MIMEType()
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(buildPrompt(request.Language, request.UseITN)),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, handleAPIError(ctx, err)
	}

	return &provider.TranscriptionResponse{
		Text:           strings.TrimSpace(resp.Text()),
		Language:       request.Language,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      g.config.Model,
		ProviderMetadata: map[string]interface{}{
			"mime_type":  mimeType,
			"audio_size": len(data),
		},
	}, nil
}

func buildPrompt(language string, useITN bool) string {
	var b strings.Builder
	b.WriteString("Transcribe the speech in this audio verbatim. Return only the transcript, with no commentary.")
	if name, ok := languageNames[language]; ok {
		fmt.Fprintf(&b, " The speech is in %s.", name)
	}
	if language == "nospeech" {
		b.WriteString(" If there is no speech, return an empty response.")
	}
	if useITN {
		b.WriteString(" Use punctuation and write numbers as digits.")
	} else {
		b.WriteString(" Do not add punctuation and write numbers as spoken words.")
	}
	return b.String()
}

func handleAPIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		e := provider.NewError(providerName, provider.CodeContextExpired, false, "request aborted: %v", ctxErr)
		e.Cause = err
		return e
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		code := provider.CodeAPIError
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			code = provider.CodeNotConfigured
		}
		e := provider.NewError(providerName, code, apiErr.Code >= 500 || apiErr.Code == http.StatusTooManyRequests,
			"Gemini API error %d: %s", apiErr.Code, apiErr.Message)
		e.Cause = err
		return e
	}

	e := provider.NewError(providerName, provider.CodeRequestFailed, true, "Gemini request failed: %v", err)
	e.Cause = err
	return e
}

// GetProviderInfo returns metadata about the Gemini provider
func (g *GeminiProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "Google Gemini (audio understanding)",
		Type:        provider.ProviderTypeRemote,
		Version:     "1.0.0",
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatM4A,
		},
		SupportedLanguages:        provider.SupportedLanguages,
		SupportsLanguageDetection: true,
		SupportsITN:               true,
		RequiresInternet:          true,
		RequiresAPIKey:            true,
		DefaultModel:              defaultModel,
	}
}

// ValidateConfiguration validates the provider configuration
func (g *GeminiProvider) ValidateConfiguration() error {
	if g.config.APIKey == "" {
		return errors.New("Gemini API key is required")
	}
	if g.config.Model == "" {
		return errors.New("model is required")
	}
	return nil
}

// HealthCheck fetches the configured model's metadata.
func (g *GeminiProvider) HealthCheck(ctx context.Context) error {
	if err := g.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := g.client.Models.Get(ctx, g.config.Model, nil); err != nil {
		return fmt.Errorf("Gemini API health check failed: %w", err)
	}
	return nil
}
