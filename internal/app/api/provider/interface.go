package provider

import (
	"context"
)

// TranscriptionProvider is the transcription entry point of a speech
// recognition backend. Implementations must be safe for concurrent use;
// callers add no locking of their own.
type TranscriptionProvider interface {
	// Transcribe recognises the audio file at request.AudioPath and returns
	// the raw backend text (special tokens included).
	Transcribe(ctx context.Context, request *TranscriptionRequest) (*TranscriptionResponse, error)

	// Provider metadata and capabilities
	GetProviderInfo() ProviderInfo

	// ValidateConfiguration checks static configuration without side effects.
	ValidateConfiguration() error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}

// ModelLoader is implemented by backends that need an explicit, one-time
// model load before the first Transcribe call.
type ModelLoader interface {
	LoadModel(ctx context.Context, model ModelConfig) error
}
