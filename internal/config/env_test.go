package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingsEnvKeys = []string{
	"SENSEVOICE_USE_GPU", "SENSEVOICE_GPU_ID", "SENSEVOICE_DEVICE", "SENSEVOICE_MODEL_DIR",
	"SENSEVOICE_VAD_MODEL", "SENSEVOICE_VAD_MAX_SEGMENT_MS", "SENSEVOICE_TRUST_REMOTE_CODE",
	"SENSEVOICE_REMOTE_CODE", "FRONTEND_HOSTS", "FRONTEND_PORT", "SENSEVOICE_HOST",
	"SENSEVOICE_PORT", "SENSEVOICE_RELOAD", "SENSEVOICE_BACKEND", "SENSEVOICE_SERVER_URL",
	"SENSEVOICE_FUNASR_BIN", "SENSEVOICE_CONFIG", "SENSEVOICE_TEMP_DIR",
	"SENSEVOICE_MAX_UPLOAD_MB", "ASR_CACHE_REDIS_URL", "ASR_CACHE_TTL", "OPENAI_API_KEY",
	"GEMINI_API_KEY", "LOG_LEVEL", "LOG_FORMAT",
}

// clearSettingsEnv blanks every variable Settings reads so host configuration
// cannot leak into a test. t.Setenv restores the previous values.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range settingsEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseBool(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{" on ", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
		{"enabled", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseBool(tc.input))
		})
	}
}

func TestGetBoolEnv_Default(t *testing.T) {
	clearSettingsEnv(t)

	assert.True(t, getBoolEnv("SENSEVOICE_TRUST_REMOTE_CODE", true))
	assert.False(t, getBoolEnv("SENSEVOICE_USE_GPU", false))

	t.Setenv("SENSEVOICE_USE_GPU", "yes")
	assert.True(t, getBoolEnv("SENSEVOICE_USE_GPU", false))
}

func TestGetIntEnv(t *testing.T) {
	clearSettingsEnv(t)

	n, err := getIntEnv("SENSEVOICE_PORT", 8001)
	require.NoError(t, err)
	assert.Equal(t, 8001, n)

	t.Setenv("SENSEVOICE_PORT", "9000")
	n, err = getIntEnv("SENSEVOICE_PORT", 8001)
	require.NoError(t, err)
	assert.Equal(t, 9000, n)

	t.Setenv("SENSEVOICE_PORT", "nine")
	_, err = getIntEnv("SENSEVOICE_PORT", 8001)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SENSEVOICE_PORT")
}

func TestGetDurationEnv(t *testing.T) {
	clearSettingsEnv(t)

	d, err := getDurationEnv("ASR_CACHE_TTL", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	t.Setenv("ASR_CACHE_TTL", "90m")
	d, err = getDurationEnv("ASR_CACHE_TTL", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	t.Setenv("ASR_CACHE_TTL", "soon")
	_, err = getDurationEnv("ASR_CACHE_TTL", time.Hour)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	clearSettingsEnv(t)

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path, err := LoadEnv()
	require.NoError(t, err)
	assert.Empty(t, path, "no .env file should be reported when none exists")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SENSEVOICE_PORT=8123\n"), 0o644))

	path, err = LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", path)
	assert.Equal(t, "8123", os.Getenv("SENSEVOICE_PORT"))
}
