package sensevoice_server

import (
	"sensevoice-asr/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createSenseVoiceServerProvider)
}

func createSenseVoiceServerProvider(config provider.ProviderConfig) (provider.TranscriptionProvider, error) {
	return NewSenseVoiceServerProviderFromConfig(config)
}
