// Package collector gathers fee samples from all configured providers.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/metrics"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
)

// DefaultTimeout bounds a single provider query within a collection run.
const DefaultTimeout = 10 * time.Second

// Collector queries all providers for one fee sample each. Providers that
// fail contribute nothing to the run; they are not retried within a run.
type Collector struct {
	providers []providers.Provider
	timeout   time.Duration
	logger    *logging.Logger
}

// New creates a collector over the given providers.
func New(provs []providers.Provider, timeout time.Duration, logger *logging.Logger) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{
		providers: provs,
		timeout:   timeout,
		logger:    logger,
	}
}

// Collect queries every provider concurrently and returns the successfully
// collected samples in provider order. Failures are logged and excluded; an
// empty result is the caller's problem to treat as fatal.
func (c *Collector) Collect(ctx context.Context) aggregator.SampleSet {
	results := make([]*aggregator.Sample, len(c.providers))

	var wg sync.WaitGroup
	for i, p := range c.providers {
		wg.Add(1)
		go func(i int, p providers.Provider) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			sample, err := p.FetchSample(fetchCtx)
			if err != nil {
				metrics.RecordSampleFetch(p.Name(), "error")
				c.logger.Warn("Provider failed, excluding from run",
					"provider", p.Name(), "error", err.Error())
				return
			}

			metrics.RecordSampleFetch(p.Name(), "ok")
			results[i] = &sample
		}(i, p)
	}
	wg.Wait()

	samples := make(aggregator.SampleSet, 0, len(c.providers))
	for _, r := range results {
		if r != nil {
			samples = append(samples, *r)
		}
	}

	c.logger.Debug("Collected fee samples",
		"collected", len(samples), "providers", len(c.providers))
	return samples
}

// Providers returns the providers this collector queries.
func (c *Collector) Providers() []providers.Provider {
	return c.providers
}
