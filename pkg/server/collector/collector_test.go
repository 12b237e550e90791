package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
)

// fakeProvider is a test double returning a fixed sample or error.
type fakeProvider struct {
	name   string
	sample aggregator.Sample
	err    error
	delay  time.Duration
}

func (f *fakeProvider) Initialize(context.Context) error { return nil }
func (f *fakeProvider) Stop() error                      { return nil }
func (f *fakeProvider) Name() string                     { return f.name }
func (f *fakeProvider) Type() providers.ProviderType     { return providers.ProviderTypeREST }
func (f *fakeProvider) IsHealthy() bool                  { return f.err == nil }
func (f *fakeProvider) LastUpdate() time.Time            { return time.Time{} }

func (f *fakeProvider) FetchSample(ctx context.Context) (aggregator.Sample, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return aggregator.Sample{}, ctx.Err()
		}
	}
	if f.err != nil {
		return aggregator.Sample{}, f.err
	}
	return f.sample, nil
}

func TestCollector_AllSucceed(t *testing.T) {
	provs := []providers.Provider{
		&fakeProvider{name: "a", sample: aggregator.Sample{Provider: "a", BaseFee: 100, PriorityFee: 10, Block: 1}},
		&fakeProvider{name: "b", sample: aggregator.Sample{Provider: "b", BaseFee: 102, PriorityFee: 12, Block: 1}},
		&fakeProvider{name: "c", sample: aggregator.Sample{Provider: "c", BaseFee: 98, PriorityFee: 8, Block: 1}},
	}

	coll := New(provs, time.Second, logging.NewNoopLogger())
	samples := coll.Collect(context.Background())

	require.Len(t, samples, 3)
	// Samples are returned in provider order regardless of completion order.
	assert.Equal(t, "a", samples[0].Provider)
	assert.Equal(t, "b", samples[1].Provider)
	assert.Equal(t, "c", samples[2].Provider)
}

func TestCollector_FailuresExcluded(t *testing.T) {
	provs := []providers.Provider{
		&fakeProvider{name: "good", sample: aggregator.Sample{Provider: "good", BaseFee: 100, PriorityFee: 10}},
		&fakeProvider{name: "down", err: errors.New("connection refused")},
		&fakeProvider{name: "also-good", sample: aggregator.Sample{Provider: "also-good", BaseFee: 101, PriorityFee: 11}},
	}

	coll := New(provs, time.Second, logging.NewNoopLogger())
	samples := coll.Collect(context.Background())

	require.Len(t, samples, 2)
	assert.Equal(t, "good", samples[0].Provider)
	assert.Equal(t, "also-good", samples[1].Provider)
}

func TestCollector_AllFail(t *testing.T) {
	provs := []providers.Provider{
		&fakeProvider{name: "x", err: errors.New("boom")},
		&fakeProvider{name: "y", err: errors.New("boom")},
	}

	coll := New(provs, time.Second, logging.NewNoopLogger())
	samples := coll.Collect(context.Background())

	assert.Empty(t, samples)

	// The empty set is the aggregator's fatal condition, not the collector's.
	_, err := aggregator.New(logging.NewNoopLogger()).Aggregate(samples)
	require.ErrorIs(t, err, aggregator.ErrEmptySampleSet)
}

func TestCollector_SlowProviderTimesOut(t *testing.T) {
	provs := []providers.Provider{
		&fakeProvider{name: "fast", sample: aggregator.Sample{Provider: "fast", BaseFee: 100}},
		&fakeProvider{name: "slow", delay: 500 * time.Millisecond, sample: aggregator.Sample{Provider: "slow", BaseFee: 999}},
	}

	coll := New(provs, 50*time.Millisecond, logging.NewNoopLogger())
	samples := coll.Collect(context.Background())

	require.Len(t, samples, 1)
	assert.Equal(t, "fast", samples[0].Provider)
}
