package whisper

import (
	"sensevoice-asr/internal/app/api/provider"
)

func init() {
	// Register openai provider with the registry
	provider.RegisterProvider(providerName, createOpenAIProvider)
}

func createOpenAIProvider(config provider.ProviderConfig) (provider.TranscriptionProvider, error) {
	return NewRemoteTranscriberFromConfig(config)
}
