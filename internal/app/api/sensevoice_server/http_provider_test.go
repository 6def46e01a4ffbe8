package sensevoice_server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensevoice-asr/internal/app/api/provider"
)

// Mock inference server for testing
func createMockSenseVoiceServer(t *testing.T, inference http.HandlerFunc) (*httptest.Server, url.Values) {
	t.Helper()
	loadForm := url.Values{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference":
			inference(w, r)
		case "/load":
			if err := r.ParseForm(); err == nil {
				for k, v := range r.PostForm {
					loadForm[k] = v
				}
			}
			w.WriteHeader(http.StatusOK)
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, loadForm
}

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asr-test.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav data"), 0o600))
	return path
}

func TestSenseVoiceServerProvider_Transcribe(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
	}{
		{"object response", `{"text":"<|zh|><|NEUTRAL|><|Speech|><|withitn|>你好。"}`, "<|zh|><|NEUTRAL|><|Speech|><|withitn|>你好。"},
		{"list response", `[{"key":"asr-test","text":"hello"},{"key":"other","text":"ignored"}]`, "hello"},
		{"empty list", `[]`, ""},
		{"result wrapper", `{"result":[{"key":"k","text":"wrapped"}]}`, "wrapped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFields map[string]string
			server, _ := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseMultipartForm(10<<20))
				_, header, err := r.FormFile("file")
				require.NoError(t, err)
				assert.Equal(t, "asr-test.wav", header.Filename)
				gotFields = map[string]string{}
				for _, k := range []string{"language", "use_itn", "batch_size_s", "merge_vad", "merge_length_s"} {
					gotFields[k] = r.FormValue(k)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL})
			resp, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{
				AudioPath: writeTestAudio(t),
				Language:  "zh",
				UseITN:    true,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, resp.Text)
			assert.Equal(t, map[string]string{
				"language":       "zh",
				"use_itn":        "true",
				"batch_size_s":   "60",
				"merge_vad":      "true",
				"merge_length_s": "15",
			}, gotFields)
		})
	}
}

func TestSenseVoiceServerProvider_TranscribeErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server, _ := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("CUDA out of memory"))
		})
		p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL})

		_, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{AudioPath: writeTestAudio(t)})
		var tErr *provider.TranscriptionError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, provider.CodeAPIError, tErr.Code)
		assert.True(t, tErr.Retryable)
		assert.Contains(t, tErr.Message, "CUDA out of memory")
	})

	t.Run("malformed body", func(t *testing.T) {
		server, _ := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})
		p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL})

		_, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{AudioPath: writeTestAudio(t)})
		var tErr *provider.TranscriptionError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, provider.CodeParseFailed, tErr.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := p.Transcribe(context.Background(), &provider.TranscriptionRequest{AudioPath: "/nonexistent/a.wav"})
		var tErr *provider.TranscriptionError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, provider.CodeFileNotFound, tErr.Code)
	})

	t.Run("context cancelled", func(t *testing.T) {
		server, _ := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := p.Transcribe(ctx, &provider.TranscriptionRequest{AudioPath: writeTestAudio(t)})
		var tErr *provider.TranscriptionError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, provider.CodeContextExpired, tErr.Code)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSenseVoiceServerProvider_LoadModel(t *testing.T) {
	var batch string
	server, loadForm := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		batch = r.FormValue("batch_size_s")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	})
	p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL + "/"})

	err := p.LoadModel(context.Background(), provider.ModelConfig{
		Model:           "iic/SenseVoiceSmall",
		Device:          "cuda:1",
		VADModel:        "fsmn-vad",
		VADMaxSegmentMs: 30000,
		TrustRemoteCode: true,
		RemoteCode:      "./model.py",
		Generate:        provider.GenerateOptions{BatchSizeS: 30, MergeVAD: false, MergeLengthS: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "iic/SenseVoiceSmall", loadForm.Get("model"))
	assert.Equal(t, "cuda:1", loadForm.Get("device"))
	assert.Equal(t, "30000", loadForm.Get("vad_max_single_segment_time"))
	assert.Equal(t, "true", loadForm.Get("trust_remote_code"))

	_, err = p.Transcribe(context.Background(), &provider.TranscriptionRequest{AudioPath: writeTestAudio(t)})
	require.NoError(t, err)
	assert.Equal(t, "30", batch)
}

func TestSenseVoiceServerProvider_LoadModelFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer server.Close()

	p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL})
	err := p.LoadModel(context.Background(), provider.ModelConfig{Model: "missing"})

	var tErr *provider.TranscriptionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, provider.CodeModelLoad, tErr.Code)
	assert.Contains(t, tErr.Message, "model not found")
}

func TestSenseVoiceServerProvider_HealthCheck(t *testing.T) {
	server, _ := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {})
	p := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: server.URL})
	assert.NoError(t, p.HealthCheck(context.Background()))

	down := NewSenseVoiceServerProvider(SenseVoiceServerConfig{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, down.HealthCheck(context.Background()))
}

func TestSenseVoiceServerProvider_Configuration(t *testing.T) {
	tests := []struct {
		name    string
		config  provider.ProviderConfig
		wantErr string
	}{
		{
			name:   "valid",
			config: provider.ProviderConfig{Type: providerName, Settings: map[string]interface{}{"base_url": "http://localhost:50000"}},
		},
		{
			name:    "missing base url",
			config:  provider.ProviderConfig{Type: providerName},
			wantErr: "base_url is required",
		},
		{
			name:    "bad scheme",
			config:  provider.ProviderConfig{Type: providerName, Settings: map[string]interface{}{"base_url": "ftp://localhost"}},
			wantErr: "must start with http",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := provider.CreateProvider(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			info := p.GetProviderInfo()
			assert.Equal(t, providerName, info.Name)
			assert.True(t, info.SupportsITN)
			_, isLoader := p.(provider.ModelLoader)
			assert.True(t, isLoader)
		})
	}
}

func TestNewSenseVoiceServerProviderFromConfig_Auth(t *testing.T) {
	var gotAuth, gotCustom string
	server, _ := createMockSenseVoiceServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Tenant")
		_, _ = w.Write([]byte(`{"text":"hi"}`))
	})

	p, err := NewSenseVoiceServerProviderFromConfig(provider.ProviderConfig{
		Settings: map[string]interface{}{"base_url": server.URL},
		Auth:     provider.AuthConfig{APIKey: "token", Headers: map[string]string{"X-Tenant": "lab"}},
	})
	require.NoError(t, err)

	_, err = p.Transcribe(context.Background(), &provider.TranscriptionRequest{AudioPath: writeTestAudio(t)})
	require.NoError(t, err)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "lab", gotCustom)
}
