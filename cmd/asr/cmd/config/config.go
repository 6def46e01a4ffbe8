package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sensevoice-asr/internal/app"
	appconfig "sensevoice-asr/internal/config"
)

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective settings and CORS origins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := app.Bootstrap(nil)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		return Print(cmd.OutOrStdout(), settings)
	},
}

type effective struct {
	Listen       string   `yaml:"listen"`
	Development  bool     `yaml:"development"`
	Backend      string   `yaml:"backend"`
	BackendURL   string   `yaml:"backend_url,omitempty"`
	Model        string   `yaml:"model"`
	Device       string   `yaml:"device"`
	VADModel     string   `yaml:"vad_model"`
	MaxUploadMB  int      `yaml:"max_upload_mb"`
	TempDir      string   `yaml:"temp_dir,omitempty"`
	Cache        string   `yaml:"cache"`
	CORSAllowAll bool     `yaml:"cors_allow_all"`
	CORSOrigins  []string `yaml:"cors_origins,omitempty"`
	OpenAIKey    string   `yaml:"openai_api_key,omitempty"`
	GeminiKey    string   `yaml:"gemini_api_key,omitempty"`
}

// Print writes the effective settings as YAML. Secrets are masked.
func Print(w io.Writer, s *appconfig.Settings) error {
	backend, model, err := s.BackendConfig()
	if err != nil {
		return err
	}
	baseURL, _ := backend.String("base_url")

	cache := "disabled"
	if s.CacheEnabled() {
		cache = fmt.Sprintf("redis (ttl %s)", s.CacheTTL)
	}

	out, err := yaml.Marshal(effective{
		Listen:       s.Addr(),
		Development:  s.Development(),
		Backend:      backend.Type,
		BackendURL:   baseURL,
		Model:        model.Model,
		Device:       model.Device,
		VADModel:     model.VADModel,
		MaxUploadMB:  s.MaxUploadMB,
		TempDir:      s.TempDir,
		Cache:        cache,
		CORSAllowAll: s.AllowAllOrigins(),
		CORSOrigins:  s.CORSOrigins(),
		OpenAIKey:    mask(s.OpenAIKey),
		GeminiKey:    mask(s.GeminiKey),
	})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
