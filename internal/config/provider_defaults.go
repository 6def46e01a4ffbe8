package config

import "time"

// Defaults favour a local development setup: CPU inference, a Vite front end
// on 5173 and the API on 8001.
const (
	DefaultDevice          = "cpu"
	DefaultModelDir        = "iic/SenseVoiceSmall"
	DefaultVADModel        = "fsmn-vad"
	DefaultVADMaxSegmentMs = 30000
	DefaultRemoteCode      = "./model.py"

	DefaultFrontendHosts = "localhost,127.0.0.1,192.168.8.210"
	DefaultFrontendPort  = "5173"

	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 8001

	DefaultBackend     = "sensevoice_server"
	DefaultServerURL   = "http://127.0.0.1:50000"
	DefaultFunASRBin   = "funasr"
	DefaultMaxUploadMB = 100

	DefaultCacheTTL = 24 * time.Hour

	// Generate options passed with every inference call.
	DefaultBatchSizeS   = 60
	DefaultMergeVAD     = true
	DefaultMergeLengthS = 15
)

// Backend timeouts. Zero means the inference call is not bounded by the gateway.
const (
	DefaultServerTimeout = 0 * time.Second
	DefaultOpenAITimeout = 120 * time.Second
	DefaultGeminiTimeout = 120 * time.Second
	DefaultLoadTimeout   = 10 * time.Minute

	DefaultCachePingTimeout = 2 * time.Second
)

// HTTP server timeouts. No write timeout is set so a slow inference call can
// still write its response.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
)
