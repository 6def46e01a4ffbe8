package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Settings is the process-wide configuration. It is read once at startup and
// must not be modified afterwards.
type Settings struct {
	// Device / model
	UseGPU          bool
	GPUID           int    `validate:"gte=0"`
	Device          string `validate:"required"`
	ModelDir        string `validate:"required"`
	VADModel        string
	VADMaxSegmentMs int `validate:"gte=0"`
	TrustRemoteCode bool
	RemoteCode      string

	// Front end / CORS
	FrontendHosts []string `validate:"required,min=1"`
	FrontendPort  string   `validate:"required,numeric"`

	// API server
	Host   string `validate:"required"`
	Port   int    `validate:"min=1,max=65535"`
	Reload bool

	// Backend
	Backend           string `validate:"required"`
	ServerURL         string `validate:"omitempty,url"`
	FunASRBin         string
	BackendConfigPath string
	TempDir           string
	MaxUploadMB       int `validate:"gte=0"`

	// Transcript cache
	CacheRedisURL string `validate:"omitempty,url"`
	CacheTTL      time.Duration

	// Hosted backends
	OpenAIKey string
	GeminiKey string

	// Logging
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"omitempty,oneof=json console"`
}

// Load reads Settings from the environment and validates them.
func Load() (*Settings, error) {
	s, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// FromEnv reads Settings from the environment without validating them.
func FromEnv() (*Settings, error) {
	var err error
	s := &Settings{
		UseGPU:          getBoolEnv("SENSEVOICE_USE_GPU", false),
		ModelDir:        getEnvOrDefault("SENSEVOICE_MODEL_DIR", DefaultModelDir),
		VADModel:        getEnvOrDefault("SENSEVOICE_VAD_MODEL", DefaultVADModel),
		TrustRemoteCode: getBoolEnv("SENSEVOICE_TRUST_REMOTE_CODE", true),
		RemoteCode:      getEnvOrDefault("SENSEVOICE_REMOTE_CODE", DefaultRemoteCode),

		FrontendHosts: SplitHosts(getEnvOrDefault("FRONTEND_HOSTS", DefaultFrontendHosts)),
		FrontendPort:  getEnvOrDefault("FRONTEND_PORT", DefaultFrontendPort),

		Host:   getEnvOrDefault("SENSEVOICE_HOST", DefaultAPIHost),
		Reload: getBoolEnv("SENSEVOICE_RELOAD", false),

		Backend:           getEnvOrDefault("SENSEVOICE_BACKEND", DefaultBackend),
		ServerURL:         getEnvOrDefault("SENSEVOICE_SERVER_URL", DefaultServerURL),
		FunASRBin:         getEnvOrDefault("SENSEVOICE_FUNASR_BIN", DefaultFunASRBin),
		BackendConfigPath: getEnvOrDefault("SENSEVOICE_CONFIG", ""),
		TempDir:           getEnvOrDefault("SENSEVOICE_TEMP_DIR", ""),

		CacheRedisURL: getEnvOrDefault("ASR_CACHE_REDIS_URL", ""),

		OpenAIKey: getEnvOrDefault("OPENAI_API_KEY", ""),
		GeminiKey: getEnvOrDefault("GEMINI_API_KEY", ""),

		LogLevel:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "")),
	}

	if s.GPUID, err = getIntEnv("SENSEVOICE_GPU_ID", 0); err != nil {
		return nil, err
	}
	if s.VADMaxSegmentMs, err = getIntEnv("SENSEVOICE_VAD_MAX_SEGMENT_MS", DefaultVADMaxSegmentMs); err != nil {
		return nil, err
	}
	if s.Port, err = getIntEnv("SENSEVOICE_PORT", DefaultAPIPort); err != nil {
		return nil, err
	}
	if s.MaxUploadMB, err = getIntEnv("SENSEVOICE_MAX_UPLOAD_MB", DefaultMaxUploadMB); err != nil {
		return nil, err
	}
	if s.CacheTTL, err = getDurationEnv("ASR_CACHE_TTL", DefaultCacheTTL); err != nil {
		return nil, err
	}

	// SENSEVOICE_DEVICE wins; otherwise derive from the GPU flag and index.
	s.Device = getEnvOrDefault("SENSEVOICE_DEVICE", DeriveDevice(s.UseGPU, s.GPUID))

	return s, nil
}

// DeriveDevice returns "cuda:<id>" when GPU inference is requested and "cpu" otherwise.
func DeriveDevice(useGPU bool, gpuID int) string {
	if useGPU {
		return fmt.Sprintf("cuda:%d", gpuID)
	}
	return DefaultDevice
}

// SplitHosts splits a comma separated host list, dropping blanks and duplicates.
func SplitHosts(raw string) []string {
	hosts := lo.Map(strings.Split(raw, ","), func(h string, _ int) string {
		return strings.TrimSpace(h)
	})
	return lo.Uniq(lo.Compact(hosts))
}

// AllowAllOrigins reports whether the front-end host list is the wildcard.
func (s *Settings) AllowAllOrigins() bool {
	return lo.Contains(s.FrontendHosts, "*")
}

// CORSOrigins combines every front-end host with the front-end port under
// both the http and https schemes. It returns nil in wildcard mode.
func (s *Settings) CORSOrigins() []string {
	if s.AllowAllOrigins() {
		return nil
	}
	return lo.Uniq(lo.FlatMap(s.FrontendHosts, func(host string, _ int) []string {
		hostPort := net.JoinHostPort(host, s.FrontendPort)
		return []string{"http://" + hostPort, "https://" + hostPort}
	}))
}

// Addr returns the API listen address.
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MaxUploadBytes returns the upload cap in bytes; zero disables the cap.
func (s *Settings) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// CacheEnabled reports whether the Redis transcript cache is configured.
func (s *Settings) CacheEnabled() bool {
	return s.CacheRedisURL != ""
}

// Development reports whether the service runs in development mode.
func (s *Settings) Development() bool {
	return s.Reload
}
