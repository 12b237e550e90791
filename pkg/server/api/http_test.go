package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/collector"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
)

type fakeProvider struct {
	name   string
	sample aggregator.Sample
	err    error
	calls  int
}

func (f *fakeProvider) Initialize(context.Context) error { return nil }
func (f *fakeProvider) Stop() error                      { return nil }
func (f *fakeProvider) Name() string                     { return f.name }
func (f *fakeProvider) Type() providers.ProviderType     { return providers.ProviderTypeREST }
func (f *fakeProvider) IsHealthy() bool                  { return f.err == nil }
func (f *fakeProvider) LastUpdate() time.Time            { return time.Time{} }

func (f *fakeProvider) FetchSample(context.Context) (aggregator.Sample, error) {
	f.calls++
	if f.err != nil {
		return aggregator.Sample{}, f.err
	}
	return f.sample, nil
}

func newTestServer(cacheTTL time.Duration, provs ...providers.Provider) *Server {
	logger := logging.NewNoopLogger()
	coll := collector.New(provs, time.Second, logger)
	agg := aggregator.New(logger)
	return NewServer(":0", coll, agg, cacheTTL, logger)
}

func TestHandleFee(t *testing.T) {
	server := newTestServer(0,
		&fakeProvider{name: "a", sample: aggregator.Sample{Provider: "a", BaseFee: 20_000_000_000, PriorityFee: 1_500_000_000, Block: 1}},
		&fakeProvider{name: "b", sample: aggregator.Sample{Provider: "b", BaseFee: 21_000_000_000, PriorityFee: 2_000_000_000, Block: 1}},
		&fakeProvider{name: "c", sample: aggregator.Sample{Provider: "c", BaseFee: 19_000_000_000, PriorityFee: 1_000_000_000, Block: 1}},
	)

	rec := httptest.NewRecorder()
	server.handleFee(rec, httptest.NewRequest(http.MethodGet, "/v1/fee", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, []string{"a", "b", "c"}, report.Providers)
	assert.Equal(t, uint64(20_000_000_000), report.BaseFeeMedianWei)
	assert.Equal(t, uint64(1_500_000_000), report.PriorityFeeMedianWei)
	// floor(20e9 * 1.12) + 1.5e9
	assert.Equal(t, uint64(23_900_000_000), report.RecommendedFeeWei)
	assert.Equal(t, "20.00", report.BaseFeeMedianGwei)
	assert.Equal(t, "1.50", report.PriorityFeeMedianGwei)
	assert.Equal(t, "23.90", report.RecommendedFeeGwei)
}

func TestHandleFee_NoSamples(t *testing.T) {
	server := newTestServer(0,
		&fakeProvider{name: "down", err: errors.New("unreachable")},
	)

	rec := httptest.NewRecorder()
	server.handleFee(rec, httptest.NewRequest(http.MethodGet, "/v1/fee", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleFee_CacheHit(t *testing.T) {
	provider := &fakeProvider{name: "a", sample: aggregator.Sample{Provider: "a", BaseFee: 100, PriorityFee: 10}}
	server := newTestServer(time.Minute, provider)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		server.handleFee(rec, httptest.NewRequest(http.MethodGet, "/v1/fee", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Only the first request should reach the provider within the TTL.
	assert.Equal(t, 1, provider.calls)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(0)

	rec := httptest.NewRecorder()
	server.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleProviders(t *testing.T) {
	server := newTestServer(0,
		&fakeProvider{name: "a", sample: aggregator.Sample{Provider: "a", BaseFee: 100, PriorityFee: 10}},
		&fakeProvider{name: "down", err: errors.New("unreachable")},
	)

	rec := httptest.NewRecorder()
	server.handleProviders(rec, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []ProviderStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 2)

	assert.Equal(t, "a", statuses[0].Name)
	assert.Equal(t, "rest", statuses[0].Type)
	assert.True(t, statuses[0].Healthy)
	assert.Empty(t, statuses[0].LastUpdate)

	assert.Equal(t, "down", statuses[1].Name)
	assert.False(t, statuses[1].Healthy)
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	report := BuildReport(&aggregator.Recommendation{
		Providers:         []string{"a", "b"},
		BaseFeeMedian:     19_500_000_000,
		PriorityFeeMedian: 2_000_000_000,
		RecommendedFee:    23_840_000_000,
		Timestamp:         now,
	})

	assert.Equal(t, "19.50", report.BaseFeeMedianGwei)
	assert.Equal(t, "2.00", report.PriorityFeeMedianGwei)
	assert.Equal(t, "23.84", report.RecommendedFeeGwei)
	assert.Equal(t, "2026-08-23T12:00:00Z", report.Timestamp)
}
