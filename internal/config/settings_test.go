package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	clearSettingsEnv(t)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cpu", s.Device)
	assert.Equal(t, DefaultModelDir, s.ModelDir)
	assert.Equal(t, DefaultVADModel, s.VADModel)
	assert.Equal(t, 30000, s.VADMaxSegmentMs)
	assert.True(t, s.TrustRemoteCode)
	assert.Equal(t, []string{"localhost", "127.0.0.1", "192.168.8.210"}, s.FrontendHosts)
	assert.Equal(t, "5173", s.FrontendPort)
	assert.Equal(t, "0.0.0.0:8001", s.Addr())
	assert.False(t, s.Reload)
	assert.Equal(t, DefaultBackend, s.Backend)
	assert.Equal(t, int64(100<<20), s.MaxUploadBytes())
	assert.False(t, s.CacheEnabled())
	assert.Equal(t, 24*time.Hour, s.CacheTTL)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoad_DeviceSelection(t *testing.T) {
	testCases := []struct {
		name   string
		env    map[string]string
		device string
	}{
		{
			name:   "cpu by default",
			env:    map[string]string{},
			device: "cpu",
		},
		{
			name:   "gpu flag uses index zero",
			env:    map[string]string{"SENSEVOICE_USE_GPU": "true"},
			device: "cuda:0",
		},
		{
			name:   "gpu flag with index",
			env:    map[string]string{"SENSEVOICE_USE_GPU": "1", "SENSEVOICE_GPU_ID": "2"},
			device: "cuda:2",
		},
		{
			name:   "explicit device wins",
			env:    map[string]string{"SENSEVOICE_USE_GPU": "true", "SENSEVOICE_DEVICE": "mps"},
			device: "mps",
		},
		{
			name:   "index ignored without gpu flag",
			env:    map[string]string{"SENSEVOICE_GPU_ID": "3"},
			device: "cpu",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearSettingsEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			s, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tc.device, s.Device)
		})
	}
}

func TestSettings_CORSOrigins(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("FRONTEND_HOSTS", " localhost, ,example.test,localhost")
	t.Setenv("FRONTEND_PORT", "3000")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://localhost:3000",
		"https://localhost:3000",
		"http://example.test:3000",
		"https://example.test:3000",
	}, s.CORSOrigins())
	assert.False(t, s.AllowAllOrigins())
}

func TestSettings_CORSOrigins_Wildcard(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("FRONTEND_HOSTS", "*")

	s, err := Load()
	require.NoError(t, err)

	assert.True(t, s.AllowAllOrigins())
	assert.Nil(t, s.CORSOrigins())
}

func TestLoad_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name          string
		env           map[string]string
		errorContains string
	}{
		{
			name:          "port out of range",
			env:           map[string]string{"SENSEVOICE_PORT": "70000"},
			errorContains: "Port must be at most 65535",
		},
		{
			name:          "non numeric port",
			env:           map[string]string{"SENSEVOICE_PORT": "http"},
			errorContains: "SENSEVOICE_PORT",
		},
		{
			name:          "frontend port must be numeric",
			env:           map[string]string{"FRONTEND_PORT": "vite"},
			errorContains: "FrontendPort must be numeric",
		},
		{
			name:          "unknown log level",
			env:           map[string]string{"LOG_LEVEL": "loud"},
			errorContains: "LogLevel must be one of",
		},
		{
			name:          "wildcard mixed with hosts",
			env:           map[string]string{"FRONTEND_HOSTS": "*,localhost"},
			errorContains: "cannot mix",
		},
		{
			name:          "server backend needs http url",
			env:           map[string]string{"SENSEVOICE_SERVER_URL": "ftp://models.local"},
			errorContains: "SENSEVOICE_SERVER_URL must start with http",
		},
		{
			name:          "empty host list",
			env:           map[string]string{"FRONTEND_HOSTS": " , "},
			errorContains: "FrontendHosts",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearSettingsEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestSplitHosts(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitHosts("a, b ,,a"))
	assert.Empty(t, SplitHosts(""))
}
