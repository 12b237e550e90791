// Package providers defines fee provider interfaces and shared implementation.
package providers

import (
	"context"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
)

// ProviderType represents the kind of fee data provider
type ProviderType string

const (
	ProviderTypeEVM  ProviderType = "evm"
	ProviderTypeREST ProviderType = "rest"
)

// Provider defines the interface that all fee data providers must implement.
// A provider returns exactly one sample per fetch, or an error; an error
// means the provider contributes nothing to the run (absence, never a
// zero-valued sample).
type Provider interface {
	// Initialize prepares the provider for operation
	Initialize(ctx context.Context) error

	// FetchSample queries the provider once and returns a single fee sample
	FetchSample(ctx context.Context) (aggregator.Sample, error)

	// Stop halts the provider and cleans up resources
	Stop() error

	// Name returns the unique name of this provider
	Name() string

	// Type returns the type of this provider
	Type() ProviderType

	// IsHealthy returns whether the provider is currently healthy
	IsHealthy() bool

	// LastUpdate returns the timestamp of the last successful fetch
	LastUpdate() time.Time
}

// ProviderFactory is a function that creates a new Provider instance
type ProviderFactory func(config map[string]interface{}) (Provider, error)
