package provider

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderCreator is a function that creates a provider from configuration
type ProviderCreator func(config ProviderConfig) (TranscriptionProvider, error)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a provider creator function. Backends call it
// from init so that a blank import is enough to make them available.
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, fmt.Errorf("provider type %q not registered (available: %v)", providerType, listLocked())
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types, sorted.
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return listLocked()
}

func listLocked() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// CreateProvider builds and validates the provider described by config.
func CreateProvider(config ProviderConfig) (TranscriptionProvider, error) {
	creator, err := GetProviderCreator(config.Type)
	if err != nil {
		return nil, err
	}

	p, err := creator(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", config.Type, err)
	}

	if err := p.ValidateConfiguration(); err != nil {
		return nil, fmt.Errorf("provider validation failed: %w", err)
	}

	return p, nil
}
