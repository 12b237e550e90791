package providers

import (
	"sync"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/metrics"
)

// BaseProvider provides common functionality for all fee providers
type BaseProvider struct {
	name         string
	providertype ProviderType
	endpoint     string
	lastUpdate   time.Time
	updateMu     sync.RWMutex
	healthy      bool
	healthMu     sync.RWMutex
	stopChan     chan struct{}
	logger       *logging.Logger
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(name string, providertype ProviderType, endpoint string, logger *logging.Logger) *BaseProvider {
	return &BaseProvider{
		name:         name,
		providertype: providertype,
		endpoint:     endpoint,
		stopChan:     make(chan struct{}),
		logger:       logger,
		healthy:      false,
	}
}

// Name returns the provider name
func (b *BaseProvider) Name() string {
	return b.name
}

// Type returns the provider type
func (b *BaseProvider) Type() ProviderType {
	return b.providertype
}

// Endpoint returns the configured endpoint URL
func (b *BaseProvider) Endpoint() string {
	return b.endpoint
}

// IsHealthy returns the health status
func (b *BaseProvider) IsHealthy() bool {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.healthy
}

// SetHealthy sets the health status and records it as a metric
func (b *BaseProvider) SetHealthy(healthy bool) {
	b.healthMu.Lock()
	b.healthy = healthy
	b.healthMu.Unlock()
	metrics.RecordProviderHealth(b.name, string(b.providertype), healthy)
}

// LastUpdate returns the time of the last successful fetch
func (b *BaseProvider) LastUpdate() time.Time {
	b.updateMu.RLock()
	defer b.updateMu.RUnlock()
	return b.lastUpdate
}

// SetLastUpdate sets the last update time
func (b *BaseProvider) SetLastUpdate(t time.Time) {
	b.updateMu.Lock()
	defer b.updateMu.Unlock()
	b.lastUpdate = t
}

// Stopped reports whether the provider has been stopped
func (b *BaseProvider) Stopped() bool {
	select {
	case <-b.stopChan:
		return true
	default:
		return false
	}
}

// Close closes the stop channel
func (b *BaseProvider) Close() {
	select {
	case <-b.stopChan:
		// Already closed
	default:
		close(b.stopChan)
	}
}

// Logger returns the logger
func (b *BaseProvider) Logger() *logging.Logger {
	return b.logger
}
