package providers

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]ProviderFactory)
	mu       sync.RWMutex
)

// Register adds a provider factory to the registry
func Register(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// Create creates a new provider instance by type and name
func Create(providerType, name string, config map[string]interface{}) (Provider, error) {
	mu.RLock()
	defer mu.RUnlock()

	key := fmt.Sprintf("%s.%s", providerType, name)
	factory, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", key)
	}

	return factory(config)
}

// List returns all registered provider names, sorted
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
