package funasr_cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sensevoice-asr/internal/app/api/provider"
)

const providerName = "funasr_cli"

// resultFile is where the FunASR command line writes recognised text,
// relative to the output directory.
var resultFile = filepath.Join("1best_recog", "text")

// CLIProvider transcribes audio by running the FunASR command line once per
// request.
type CLIProvider struct {
	config CLIConfig
	model  provider.ModelConfig
}

// CLIConfig represents configuration for the FunASR command line provider
type CLIConfig struct {
	BinaryPath string        `yaml:"binary_path"`
	TempDir    string        `yaml:"temp_dir"`
	Timeout    time.Duration `yaml:"timeout"`
	ExtraArgs  []string      `yaml:"extra_args"`
}

// NewCLIProvider creates a new FunASR command line provider
func NewCLIProvider(config CLIConfig, model provider.ModelConfig) *CLIProvider {
	if config.BinaryPath == "" {
		config.BinaryPath = "funasr"
	}
	if model.Model == "" {
		model.Model = "iic/SenseVoiceSmall"
	}
	if model.Device == "" {
		model.Device = "cpu"
	}
	return &CLIProvider{config: config, model: model}
}

// NewCLIProviderFromConfig creates provider from generic settings
func NewCLIProviderFromConfig(cfg provider.ProviderConfig) (*CLIProvider, error) {
	config := CLIConfig{Timeout: cfg.Timeout()}
	if v, ok := cfg.String("binary_path"); ok {
		config.BinaryPath = v
	}
	if v, ok := cfg.String("temp_dir"); ok {
		config.TempDir = v
	}
	if raw, ok := cfg.Settings["extra_args"].([]interface{}); ok {
		for _, a := range raw {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("extra_args must be a list of strings")
			}
			config.ExtraArgs = append(config.ExtraArgs, s)
		}
	}

	model := provider.ModelConfig{}
	if v, ok := cfg.String("model"); ok {
		model.Model = v
	}
	if v, ok := cfg.String("device"); ok {
		model.Device = v
	}
	return NewCLIProvider(config, model), nil
}

// Transcribe runs the command line against the staged file and reads the
// first recognised line back.
func (p *CLIProvider) Transcribe(ctx context.Context, request *provider.TranscriptionRequest) (*provider.TranscriptionResponse, error) {
	startTime := time.Now()

	if request == nil || request.AudioPath == "" {
		return nil, provider.NewError(providerName, provider.CodeInvalidInput, false, "input file path is required")
	}
	if _, err := os.Stat(request.AudioPath); os.IsNotExist(err) {
		return nil, provider.NewError(providerName, provider.CodeFileNotFound, false, "input file not found: %s", request.AudioPath)
	}

	outputDir, err := os.MkdirTemp(p.config.TempDir, "funasr-out-*")
	if err != nil {
		return nil, provider.NewError(providerName, provider.CodeCommandFailed, true, "failed to create output directory: %v", err)
	}
	defer os.RemoveAll(outputDir)

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	args := p.buildArgs(request, outputDir)
	cmd := exec.CommandContext(ctx, p.config.BinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			e := provider.NewError(providerName, provider.CodeContextExpired, false, "funasr aborted: %v", ctxErr)
			e.Cause = ctxErr
			return nil, e
		}
		e := provider.NewError(providerName, provider.CodeCommandFailed, true, "funasr failed: %v: %s", err, lastLine(stderr.String()))
		e.Cause = err
		return nil, e
	}

	text, err := readResult(filepath.Join(outputDir, resultFile))
	if err != nil {
		return nil, provider.NewError(providerName, provider.CodeOutputMissing, false, "failed to read funasr output: %v", err)
	}

	return &provider.TranscriptionResponse{
		Text:           text,
		Language:       request.Language,
		ProcessingTime: time.Since(startTime),
		ModelUsed:      p.model.Model,
		ProviderMetadata: map[string]interface{}{
			"binary_path": p.config.BinaryPath,
			"device":      p.model.Device,
		},
	}, nil
}

func (p *CLIProvider) buildArgs(request *provider.TranscriptionRequest, outputDir string) []string {
	language := request.Language
	if language == "" {
		language = provider.LanguageAuto
	}

	args := []string{
		"++model=" + p.model.Model,
		"++device=" + p.model.Device,
		"++input=" + request.AudioPath,
		"++output_dir=" + outputDir,
		"++language=" + language,
		"++use_itn=" + strconv.FormatBool(request.UseITN),
	}
	if p.model.VADModel != "" {
		args = append(args,
			"++vad_model="+p.model.VADModel,
			"++vad_kwargs.max_single_segment_time="+strconv.Itoa(p.model.VADMaxSegmentMs),
		)
	}
	if p.model.TrustRemoteCode {
		args = append(args, "++trust_remote_code=true")
		if p.model.RemoteCode != "" {
			args = append(args, "++remote_code="+p.model.RemoteCode)
		}
	}
	if g := p.model.Generate; g.BatchSizeS > 0 {
		args = append(args,
			"++batch_size_s="+strconv.Itoa(g.BatchSizeS),
			"++merge_vad="+strconv.FormatBool(g.MergeVAD),
			"++merge_length_s="+strconv.Itoa(g.MergeLengthS),
		)
	}
	return append(args, p.config.ExtraArgs...)
}

// readResult parses "<key> <text>" lines and returns the first text. A key
// with no text yields an empty transcription.
func readResult(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		_, text, _ := strings.Cut(line, " ")
		return strings.TrimSpace(text), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// LoadModel records the model configuration used for every invocation and
// checks that the command line is installed.
func (p *CLIProvider) LoadModel(ctx context.Context, model provider.ModelConfig) error {
	if _, err := exec.LookPath(p.config.BinaryPath); err != nil {
		e := provider.NewError(providerName, provider.CodeModelLoad, false, "funasr binary %q not found: %v", p.config.BinaryPath, err)
		e.Cause = err
		return e
	}
	if model.Model != "" {
		p.model = model
	}
	return nil
}

// GetProviderInfo returns metadata about the provider
func (p *CLIProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		DisplayName: "FunASR (Local CLI)",
		Type:        provider.ProviderTypeLocal,
		Version:     "1.0.0",
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatPCM,
		},
		SupportedLanguages:        provider.SupportedLanguages,
		SupportsLanguageDetection: true,
		SupportsITN:               true,
		RequiresBinary:            true,
		DefaultModel:              "iic/SenseVoiceSmall",
	}
}

// ValidateConfiguration validates the provider configuration
func (p *CLIProvider) ValidateConfiguration() error {
	if strings.TrimSpace(p.config.BinaryPath) == "" {
		return errors.New("binary_path is required")
	}
	if p.config.TempDir != "" {
		if info, err := os.Stat(p.config.TempDir); err != nil || !info.IsDir() {
			return fmt.Errorf("temp_dir %s is not a directory", p.config.TempDir)
		}
	}
	return nil
}

// HealthCheck verifies the binary can still be resolved.
func (p *CLIProvider) HealthCheck(ctx context.Context) error {
	if err := p.ValidateConfiguration(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := exec.LookPath(p.config.BinaryPath); err != nil {
		return fmt.Errorf("funasr binary not available: %w", err)
	}
	return nil
}
