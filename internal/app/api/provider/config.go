package provider

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendFile is the optional YAML file describing the recognition backend.
//
//	backend:
//	  type: sensevoice_server
//	  timeout_sec: 0
//	  settings:
//	    base_url: ${SENSEVOICE_SERVER_URL}
//	model:
//	  generate:
//	    batch_size_s: 60
type BackendFile struct {
	Backend ProviderConfig `yaml:"backend"`
	Model   *ModelConfig   `yaml:"model,omitempty"`
}

// ProviderConfig represents configuration for a single provider
type ProviderConfig struct {
	// Provider type (sensevoice_server, funasr_cli, openai, gemini)
	Type string `yaml:"type"`

	// Provider-specific settings
	Settings map[string]interface{} `yaml:"settings,omitempty"`

	// Authentication settings
	Auth AuthConfig `yaml:"auth,omitempty"`

	// Timeout for one transcription call; zero leaves it unbounded.
	TimeoutSec int `yaml:"timeout_sec,omitempty"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	// API key (can be environment variable reference like ${OPENAI_API_KEY})
	APIKey string `yaml:"api_key,omitempty"`

	// Additional headers for HTTP-based providers
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Timeout returns the configured call timeout.
func (c ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// String reads a string setting.
func (c ProviderConfig) String(key string) (string, bool) {
	v, ok := c.Settings[key].(string)
	return v, ok && v != ""
}

// Int reads an integer setting. YAML and JSON decode numbers differently so
// both int and float64 are accepted.
func (c ProviderConfig) Int(key string) (int, bool) {
	switch v := c.Settings[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Bool reads a boolean setting.
func (c ProviderConfig) Bool(key string) (bool, bool) {
	v, ok := c.Settings[key].(bool)
	return v, ok
}

// LoadBackendFile reads a BackendFile, expanding ${VAR} references first.
func LoadBackendFile(path string) (*BackendFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend config: %w", err)
	}

	var file BackendFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse backend config YAML: %w", err)
	}

	if file.Backend.Type == "" {
		return nil, fmt.Errorf("backend config %s has no type specified", path)
	}
	if file.Backend.TimeoutSec < 0 {
		return nil, fmt.Errorf("backend config %s has invalid timeout", path)
	}

	return &file, nil
}

// Merge overlays non-empty values from override onto c.
func (c ProviderConfig) Merge(override ProviderConfig) ProviderConfig {
	merged := c
	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.TimeoutSec != 0 {
		merged.TimeoutSec = override.TimeoutSec
	}
	if override.Auth.APIKey != "" {
		merged.Auth.APIKey = override.Auth.APIKey
	}
	if len(override.Auth.Headers) > 0 {
		merged.Auth.Headers = override.Auth.Headers
	}

	merged.Settings = make(map[string]interface{}, len(c.Settings)+len(override.Settings))
	for k, v := range c.Settings {
		merged.Settings[k] = v
	}
	for k, v := range override.Settings {
		merged.Settings[k] = v
	}
	return merged
}
