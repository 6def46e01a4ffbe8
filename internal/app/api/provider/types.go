package provider

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// AudioFormat defines supported audio formats
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatAMR  AudioFormat = "amr"
	FormatWEBM AudioFormat = "webm"
	FormatPCM  AudioFormat = "pcm"
)

// ProviderType defines the type of transcription provider
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// LanguageAuto lets the model detect the spoken language.
const LanguageAuto = "auto"

// SupportedLanguages lists the language hints the recogniser accepts.
var SupportedLanguages = []string{LanguageAuto, "zh", "en", "yue", "ja", "ko", "nospeech"}

// IsSupportedLanguage reports whether lang is a known language hint.
func IsSupportedLanguage(lang string) bool {
	return lo.Contains(SupportedLanguages, lang)
}

// TranscriptionRequest is one call into a backend.
type TranscriptionRequest struct {
	// AudioPath is a staged local file owned by the caller.
	AudioPath string `json:"audio_path"`

	// Language hint, one of SupportedLanguages.
	Language string `json:"language,omitempty"`

	// UseITN enables inverse text normalisation and punctuation.
	UseITN bool `json:"use_itn"`

	// Filename is the name the client uploaded, if any.
	Filename string `json:"filename,omitempty"`
}

// TranscriptionResponse represents the response from a transcription provider
type TranscriptionResponse struct {
	Text string `json:"text"`

	Language         string                 `json:"language,omitempty"`
	ProviderMetadata map[string]interface{} `json:"provider_metadata,omitempty"`
	ProcessingTime   time.Duration          `json:"processing_time,omitempty"`
	ModelUsed        string                 `json:"model_used,omitempty"`
}

// GenerateOptions are the decoding options sent with every inference call.
type GenerateOptions struct {
	BatchSizeS   int  `yaml:"batch_size_s" json:"batch_size_s"`
	MergeVAD     bool `yaml:"merge_vad" json:"merge_vad"`
	MergeLengthS int  `yaml:"merge_length_s" json:"merge_length_s"`
}

// ModelConfig is the fixed model configuration loaded once at startup.
type ModelConfig struct {
	Model           string          `yaml:"model" json:"model"`
	Device          string          `yaml:"device" json:"device"`
	VADModel        string          `yaml:"vad_model" json:"vad_model"`
	VADMaxSegmentMs int             `yaml:"vad_max_single_segment_time" json:"vad_max_single_segment_time"`
	TrustRemoteCode bool            `yaml:"trust_remote_code" json:"trust_remote_code"`
	RemoteCode      string          `yaml:"remote_code" json:"remote_code"`
	Generate        GenerateOptions `yaml:"generate" json:"generate"`
}

// ProviderInfo contains metadata about a transcription provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`
	Version     string       `json:"version,omitempty"`

	SupportedFormats   []AudioFormat `json:"supported_formats"`
	SupportedLanguages []string      `json:"supported_languages,omitempty"`

	SupportsLanguageDetection bool `json:"supports_language_detection"`
	SupportsITN               bool `json:"supports_itn"`

	RequiresInternet bool `json:"requires_internet"`
	RequiresAPIKey   bool `json:"requires_api_key"`
	RequiresBinary   bool `json:"requires_binary"`

	DefaultModel string `json:"default_model,omitempty"`
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Provider  string `json:"provider"`
	Retryable bool   `json:"retryable"`
	Cause     error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// NewError builds a TranscriptionError with a formatted message.
func NewError(providerName, code string, retryable bool, format string, args ...interface{}) *TranscriptionError {
	return &TranscriptionError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Provider:  providerName,
		Retryable: retryable,
	}
}

// Common error codes shared by backends.
const (
	CodeInvalidInput   = "invalid_input"
	CodeFileNotFound   = "file_not_found"
	CodeRequestFailed  = "request_failed"
	CodeAPIError       = "api_error"
	CodeParseFailed    = "response_parse_failed"
	CodeModelLoad      = "model_load_failed"
	CodeCommandFailed  = "command_failed"
	CodeOutputMissing  = "output_missing"
	CodeNotConfigured  = "not_configured"
	CodeContextExpired = "context_expired"
)

// GetAudioFormatFromFilename extracts audio format from filename
func GetAudioFormatFromFilename(filename string) AudioFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch AudioFormat(ext) {
	case FormatWAV, FormatMP3, FormatM4A, FormatFLAC, FormatOGG, FormatAMR, FormatWEBM, FormatPCM:
		return AudioFormat(ext)
	default:
		return ""
	}
}

// MIMEType returns the content type used when forwarding audio of this format.
func (f AudioFormat) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatM4A:
		return "audio/mp4"
	case FormatFLAC:
		return "audio/flac"
	case FormatOGG:
		return "audio/ogg"
	case FormatAMR:
		return "audio/amr"
	case FormatWEBM:
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}
