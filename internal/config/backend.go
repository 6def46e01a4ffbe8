package config

import (
	"os"

	"sensevoice-asr/internal/app/api/provider"
)

// ModelConfig returns the fixed model configuration the backend is loaded with.
func (s *Settings) ModelConfig() provider.ModelConfig {
	return provider.ModelConfig{
		Model:           s.ModelDir,
		Device:          s.Device,
		VADModel:        s.VADModel,
		VADMaxSegmentMs: s.VADMaxSegmentMs,
		TrustRemoteCode: s.TrustRemoteCode,
		RemoteCode:      s.RemoteCode,
		Generate: provider.GenerateOptions{
			BatchSizeS:   DefaultBatchSizeS,
			MergeVAD:     DefaultMergeVAD,
			MergeLengthS: DefaultMergeLengthS,
		},
	}
}

// BackendConfig resolves the backend to create. Built-in defaults come first,
// then the optional YAML file, then environment variables that were set
// explicitly. The model block of the file only contributes generate options.
func (s *Settings) BackendConfig() (provider.ProviderConfig, provider.ModelConfig, error) {
	model := s.ModelConfig()
	cfg := s.defaultBackendConfig(s.Backend)

	if s.BackendConfigPath != "" {
		file, err := provider.LoadBackendFile(s.BackendConfigPath)
		if err != nil {
			return provider.ProviderConfig{}, provider.ModelConfig{}, err
		}
		if file.Backend.Type != cfg.Type {
			if _, set := os.LookupEnv("SENSEVOICE_BACKEND"); !set {
				cfg = s.defaultBackendConfig(file.Backend.Type)
			}
		}
		if file.Backend.Type == cfg.Type {
			cfg = cfg.Merge(file.Backend)
		}
		if file.Model != nil && file.Model.Generate.BatchSizeS > 0 {
			model.Generate = file.Model.Generate
		}
	}

	return cfg.Merge(s.explicitOverrides(cfg.Type)), model, nil
}

func (s *Settings) defaultBackendConfig(backendType string) provider.ProviderConfig {
	cfg := provider.ProviderConfig{Type: backendType, Settings: map[string]interface{}{}}
	switch backendType {
	case "sensevoice_server":
		cfg.Settings["base_url"] = s.ServerURL
		cfg.TimeoutSec = int(DefaultServerTimeout.Seconds())
	case "funasr_cli":
		cfg.Settings["binary_path"] = s.FunASRBin
		cfg.Settings["model"] = s.ModelDir
		cfg.Settings["device"] = s.Device
		if s.TempDir != "" {
			cfg.Settings["temp_dir"] = s.TempDir
		}
	case "openai":
		cfg.Auth.APIKey = s.OpenAIKey
		cfg.TimeoutSec = int(DefaultOpenAITimeout.Seconds())
	case "gemini":
		cfg.Auth.APIKey = s.GeminiKey
		cfg.TimeoutSec = int(DefaultGeminiTimeout.Seconds())
	}
	return cfg
}

// explicitOverrides returns only the settings whose environment variable is
// present, so they win over the YAML file.
func (s *Settings) explicitOverrides(backendType string) provider.ProviderConfig {
	cfg := provider.ProviderConfig{Settings: map[string]interface{}{}}
	isSet := func(key string) bool {
		_, ok := os.LookupEnv(key)
		return ok
	}

	switch backendType {
	case "sensevoice_server":
		if isSet("SENSEVOICE_SERVER_URL") {
			cfg.Settings["base_url"] = s.ServerURL
		}
	case "funasr_cli":
		if isSet("SENSEVOICE_FUNASR_BIN") {
			cfg.Settings["binary_path"] = s.FunASRBin
		}
		if isSet("SENSEVOICE_TEMP_DIR") {
			cfg.Settings["temp_dir"] = s.TempDir
		}
	case "openai":
		if isSet("OPENAI_API_KEY") {
			cfg.Auth.APIKey = s.OpenAIKey
		}
	case "gemini":
		if isSet("GEMINI_API_KEY") {
			cfg.Auth.APIKey = s.GeminiKey
		}
	}
	return cfg
}
