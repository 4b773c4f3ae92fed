package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

// Manager is the registry of providers by driver name.
type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// Register makes a provider available under name. Registering a name twice replaces the
// earlier provider.
func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Drivers lists the registered driver names.
func Drivers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects with the provider registered for cfg.Driver, retrying according to
// cfg.Retry and bounded by cfg.ConnectTimeout.
func Open(ctx context.Context, cfg Config) (Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection config: %w", err)
	}

	globalManager.mu.RLock()
	provider, ok := globalManager.providers[cfg.Driver]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", cfg.Driver)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := retryConnect(ctx, cfg.Retry, func(ctx context.Context) (Connection, error) {
		return provider.Connect(ctx, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	return conn, nil
}
