package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sensevoice-asr/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func testSettings(t *testing.T, serverURL string) *config.Settings {
	t.Helper()
	return &config.Settings{
		Device:          "cpu",
		ModelDir:        "iic/SenseVoiceSmall",
		VADModel:        "fsmn-vad",
		VADMaxSegmentMs: 30000,
		FrontendHosts:   []string{"localhost"},
		FrontendPort:    "5173",
		Host:            "127.0.0.1",
		Port:            freePort(t),
		Backend:         "sensevoice_server",
		ServerURL:       serverURL,
		TempDir:         t.TempDir(),
		MaxUploadMB:     10,
		LogLevel:        "info",
	}
}

func TestRun_LoadFailureStopsStartup(t *testing.T) {
	var inferenceCalls int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
		default:
			atomic.AddInt32(&inferenceCalls, 1)
		}
	}))
	defer backend.Close()

	settings := testSettings(t, backend.URL)
	err := Run(context.Background(), settings, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load model")
	assert.Zero(t, atomic.LoadInt32(&inferenceCalls))

	_, dialErr := net.DialTimeout("tcp", settings.Addr(), 200*time.Millisecond)
	assert.Error(t, dialErr, "nothing may listen after a failed load")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	var loads int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			atomic.AddInt32(&loads, 1)
			w.WriteHeader(http.StatusOK)
		case "/inference":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"text": "<|en|><|NEUTRAL|><|Speech|><|withitn|>Hello.",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	settings := testSettings(t, backend.URL)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, settings, zap.NewNop()) }()

	base := fmt.Sprintf("http://%s", settings.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, _ = part.Write([]byte("RIFF....WAVE"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(base+"/asr?language=en", writer.FormDataContentType(), body)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello.", out["text"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
