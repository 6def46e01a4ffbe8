package gemini

import (
	"sensevoice-asr/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider(providerName, createGeminiProvider)
}

func createGeminiProvider(config provider.ProviderConfig) (provider.TranscriptionProvider, error) {
	return NewGeminiProviderFromConfig(config)
}
