package funasr_cli

import (
	"sensevoice-asr/internal/app/api/provider"
)

func init() {
	// Register funasr_cli provider with the registry
	provider.RegisterProvider(providerName, createCLIProvider)
}

func createCLIProvider(config provider.ProviderConfig) (provider.TranscriptionProvider, error) {
	return NewCLIProviderFromConfig(config)
}
