package sensevoice_server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sensevoice-asr/internal/app/api/provider"
)

const providerName = "sensevoice_server"

// SenseVoiceServerProvider transcribes audio by calling a resident
// SenseVoice/FunASR inference server over HTTP.
type SenseVoiceServerProvider struct {
	config   SenseVoiceServerConfig
	client   *http.Client
	generate provider.GenerateOptions
}

// SenseVoiceServerConfig represents configuration for the inference server API
type SenseVoiceServerConfig struct {
	BaseURL       string            `yaml:"base_url"`       // e.g. "http://127.0.0.1:50000"
	InferencePath string            `yaml:"inference_path"` // default "/inference"
	LoadPath      string            `yaml:"load_path"`      // default "/load"
	HealthPath    string            `yaml:"health_path"`    // default "/health"
	Timeout       time.Duration     `yaml:"timeout"`        // zero means no client timeout
	CustomHeaders map[string]string `yaml:"custom_headers"`
}

// inferenceResult is one entry of the server's list response.
type inferenceResult struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// NewSenseVoiceServerProvider creates a new inference server provider
func NewSenseVoiceServerProvider(config SenseVoiceServerConfig) *SenseVoiceServerProvider {
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.LoadPath == "" {
		config.LoadPath = "/load"
	}
	if config.HealthPath == "" {
		config.HealthPath = "/health"
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &SenseVoiceServerProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		generate: provider.GenerateOptions{
			BatchSizeS:   60,
			MergeVAD:     true,
			MergeLengthS: 15,
		},
	}
}

// NewSenseVoiceServerProviderFromConfig creates provider from generic settings
func NewSenseVoiceServerProviderFromConfig(cfg provider.ProviderConfig) (*SenseVoiceServerProvider, error) {
	config := SenseVoiceServerConfig{Timeout: cfg.Timeout()}

	baseURL, ok := cfg.String("base_url")
	if !ok {
		return nil, fmt.Errorf("base_url is required")
	}
	config.BaseURL = baseURL

	if v, ok := cfg.String("inference_path"); ok {
		config.InferencePath = v
	}
	if v, ok := cfg.String("load_path"); ok {
		config.LoadPath = v
	}
	if v, ok := cfg.String("health_path"); ok {
		config.HealthPath = v
	}

	config.CustomHeaders = make(map[string]string, len(cfg.Auth.Headers)+1)
	for k, v := range cfg.Auth.Headers {
		config.CustomHeaders[k] = v
	}
	if cfg.Auth.APIKey != "" {
		config.CustomHeaders["Authorization"] = "Bearer " + cfg.Auth.APIKey
	}

	return NewSenseVoiceServerProvider(config), nil
}

// Transcribe posts the staged audio file to the inference endpoint.
func (p *SenseVoiceServerProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request == nil || request.AudioPath == "" {
		return nil, provider.NewError(providerName, provider.CodeInvalidInput, false, "input file path is required")
	}
	if _, err := os.Stat(request.AudioPath); os.IsNotExist(err) {
		return nil, provider.NewError(providerName, provider.CodeFileNotFound, false, "input file not found: %s", request.AudioPath)
	}

	body, contentType, err := p.createMultipartForm(request)
	if err != nil {
		return nil, provider.NewError(providerName, provider.CodeInvalidInput, false, "failed to create multipart form: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+p.config.InferencePath, body)
	if err != nil {
		return nil, provider.NewError(providerName, provider.CodeRequestFailed, false, "failed to create HTTP request: %v", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, requestError(err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewError(providerName, provider.CodeRequestFailed, true, "failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, provider.NewError(providerName, provider.CodeAPIError, resp.StatusCode >= 500,
			"inference server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData)))
	}

	text, err := parseInferenceResponse(responseData)
	if err != nil {
		return nil, provider.NewError(providerName, provider.CodeParseFailed, false, "failed to parse response: %v", err)
	}

	return &provider.TranscriptionResponse{
		Text:           text,
		Language:       request.Language,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      "sensevoice-server",
		ProviderMetadata: map[string]interface{}{
			"base_url":      p.config.BaseURL,
			"http_status":   resp.StatusCode,
			"response_size": len(responseData),
		},
	}, nil
}

// createMultipartForm creates the multipart form for the inference request
func (p *SenseVoiceServerProvider) createMultipartForm(request *provider.TranscriptionRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(request.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(request.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %w", err)
	}

	language := request.Language
	if language == "" {
		language = provider.LanguageAuto
	}

	fields := [][2]string{
		{"language", language},
		{"use_itn", strconv.FormatBool(request.UseITN)},
		{"batch_size_s", strconv.Itoa(p.generate.BatchSizeS)},
		{"merge_vad", strconv.FormatBool(p.generate.MergeVAD)},
		{"merge_length_s", strconv.Itoa(p.generate.MergeLengthS)},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// parseInferenceResponse accepts either {"text": ...} or a list of
// {"key", "text"} results, in which case the first entry wins.
func parseInferenceResponse(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", errors.New("empty response body")
	}

	if trimmed[0] == '[' {
		var results []inferenceResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "", nil
		}
		return results[0].Text, nil
	}

	var single struct {
		Text   *string           `json:"text"`
		Result []inferenceResult `json:"result"`
	}
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", err
	}
	switch {
	case single.Text != nil:
		return *single.Text, nil
	case single.Result != nil:
		if len(single.Result) == 0 {
			return "", nil
		}
		return single.Result[0].Text, nil
	default:
		return "", errors.New(`response has neither "text" nor "result"`)
	}
}

// LoadModel asks the server to load the configured model. Servers that keep
// a fixed model resident answer 404, which is accepted.
func (p *SenseVoiceServerProvider) LoadModel(ctx context.Context, model provider.ModelConfig) error {
	form := url.Values{}
	form.Set("model", model.Model)
	form.Set("device", model.Device)
	form.Set("vad_model", model.VADModel)
	form.Set("vad_max_single_segment_time", strconv.Itoa(model.VADMaxSegmentMs))
	form.Set("trust_remote_code", strconv.FormatBool(model.TrustRemoteCode))
	form.Set("remote_code", model.RemoteCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+p.config.LoadPath, strings.NewReader(form.Encode()))
	if err != nil {
		return provider.NewError(providerName, provider.CodeModelLoad, false, "failed to create load model request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		e := requestError(err)
		e.Code = provider.CodeModelLoad
		e.Message = "load model request failed: " + err.Error()
		return e
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNotFound:
	default:
		body, _ := io.ReadAll(resp.Body)
		return provider.NewError(providerName, provider.CodeModelLoad, false,
			"load model failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if model.Generate.BatchSizeS > 0 {
		p.generate = model.Generate
	}
	return nil
}

// GetProviderInfo returns metadata about the provider
func (p *SenseVoiceServerProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "SenseVoice Server (HTTP API)",
		Type:        provider.ProviderTypeRemote,
		Version:     "1.0.0",
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatWEBM,
			provider.FormatPCM,
		},
		SupportedLanguages:        provider.SupportedLanguages,
		SupportsLanguageDetection: true,
		SupportsITN:               true,
		RequiresInternet:          true,
		DefaultModel:              "iic/SenseVoiceSmall",
	}
}

// ValidateConfiguration validates the provider configuration
func (p *SenseVoiceServerProvider) ValidateConfiguration() error {
	if p.config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(p.config.BaseURL, "http://") && !strings.HasPrefix(p.config.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://")
	}
	if p.config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// HealthCheck performs a health check on the inference server
func (p *SenseVoiceServerProvider) HealthCheck(ctx context.Context) error {
	if err := p.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+p.config.HealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("server connectivity test failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server returned error status: %d", resp.StatusCode)
	}
	return nil
}

func (p *SenseVoiceServerProvider) setHeaders(req *http.Request) {
	for key, value := range p.config.CustomHeaders {
		req.Header.Set(key, value)
	}
}

func requestError(err error) *provider.TranscriptionError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e := provider.NewError(providerName, provider.CodeContextExpired, false, "request aborted: %v", err)
		e.Cause = err
		return e
	}
	e := provider.NewError(providerName, provider.CodeRequestFailed, true, "HTTP request failed: %v", err)
	e.Cause = err
	return e
}
