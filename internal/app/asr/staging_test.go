package asr

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffixFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"recording.webm", ".webm"},
		{"Voice.MP3", ".mp3"},
		{"noext", ".wav"},
		{"", ".wav"},
		{"trailingdot.", ".wav"},
		{"dir/sub/clip.ogg", ".ogg"},
		{"weird.w*v", ".wav"},
		{"long.abcdefghijklmnopqrstuvwxyz", ".wav"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, SuffixFor(tt.filename))
		})
	}
}

func TestStager_Stage(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir, 0)

	staged, err := s.Stage(strings.NewReader("hello audio"), "clip.flac")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(staged.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(staged.Path), "asr-"))
	assert.True(t, strings.HasSuffix(staged.Path, ".flac"))
	assert.Equal(t, int64(len("hello audio")), staged.Size)

	sum := sha256.Sum256([]byte("hello audio"))
	assert.Equal(t, hex.EncodeToString(sum[:]), staged.SHA256)

	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello audio", string(data))
}

func TestStager_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		max     int64
		wantErr error
	}{
		{"empty", "", 0, ErrEmptyUpload},
		{"too large", strings.Repeat("a", 11), 10, ErrUploadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := NewStager(dir, tt.max).Stage(strings.NewReader(tt.body), "a.wav")
			assert.ErrorIs(t, err, tt.wantErr)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}

	staged, err := NewStager(t.TempDir(), 10).Stage(strings.NewReader(strings.Repeat("a", 10)), "a.wav")
	require.NoError(t, err)
	assert.Equal(t, int64(10), staged.Size)
}

func TestStager_MissingDir(t *testing.T) {
	_, err := NewStager(filepath.Join(t.TempDir(), "missing"), 0).Stage(strings.NewReader("x"), "a.wav")
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("abc", "zh", true, "sensevoice_server")
	assert.Equal(t, "asr:v1:sensevoice_server:zh:true:abc", a)
	assert.NotEqual(t, a, CacheKey("abc", "zh", false, "sensevoice_server"))
	assert.NotEqual(t, a, CacheKey("abc", "en", true, "sensevoice_server"))
	assert.NotEqual(t, a, CacheKey("abc", "zh", true, "openai"))

	_, err := NewRedisCache("not-a-url", 0)
	assert.Error(t, err)
	c, err := NewRedisCache("redis://localhost:6379/2", 0)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
