// Package metrics provides Prometheus metrics for the gas oracle.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SampleFetchesTotal is a counter of fee sample fetch attempts per provider.
	SampleFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_fetches_total",
			Help: "Total number of fee sample fetch attempts per provider",
		},
		[]string{"provider", "status"},
	)

	// ProviderHealth is a gauge of the health status of fee providers.
	ProviderHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_health",
			Help: "Health status of fee providers (1=healthy, 0=unhealthy)",
		},
		[]string{"provider", "type"},
	)

	// ProviderLastUpdate is a gauge of the last successful sample timestamp per provider.
	ProviderLastUpdate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_last_update_timestamp",
			Help: "Unix timestamp of last successful sample from provider",
		},
		[]string{"provider"},
	)

	// AggregationDuration is a histogram of fee aggregation duration.
	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fee_aggregation_duration_seconds",
			Help:    "Duration of fee aggregation runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// OutlierRejectionsTotal is a counter of rejected outlier samples per fee column.
	OutlierRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outlier_rejections_total",
			Help: "Total number of outlier fee values rejected",
		},
		[]string{"column"},
	)

	// RecommendedFeeWei is a gauge of the latest recommended fee.
	RecommendedFeeWei = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommended_fee_wei",
			Help: "Latest recommended fee in wei",
		},
	)

	// BaseFeeMedianWei is a gauge of the latest filtered base fee median.
	BaseFeeMedianWei = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "base_fee_median_wei",
			Help: "Latest outlier-filtered base fee median in wei",
		},
	)

	// PriorityFeeMedianWei is a gauge of the latest filtered priority fee median.
	PriorityFeeMedianWei = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "priority_fee_median_wei",
			Help: "Latest outlier-filtered priority fee median in wei",
		},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	// Register all metrics
	prometheus.MustRegister(
		SampleFetchesTotal,
		ProviderHealth,
		ProviderLastUpdate,
		AggregationDuration,
		OutlierRejectionsTotal,
		RecommendedFeeWei,
		BaseFeeMedianWei,
		PriorityFeeMedianWei,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordSampleFetch records a sample fetch attempt for a provider.
func RecordSampleFetch(provider, status string) {
	SampleFetchesTotal.WithLabelValues(provider, status).Inc()
	if status == "ok" {
		ProviderLastUpdate.WithLabelValues(provider).SetToCurrentTime()
	}
}

// RecordProviderHealth records the health status of a provider.
func RecordProviderHealth(provider, providerType string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	ProviderHealth.WithLabelValues(provider, providerType).Set(val)
}

// RecordAggregation records a fee aggregation run.
func RecordAggregation(duration time.Duration) {
	AggregationDuration.Observe(duration.Seconds())
}

// RecordOutlierRejection records an outlier rejection for a fee column.
func RecordOutlierRejection(column string) {
	OutlierRejectionsTotal.WithLabelValues(column).Inc()
}

// RecordRecommendation records the result of an aggregation run.
func RecordRecommendation(baseFeeMedian, priorityFeeMedian, recommendedFee uint64) {
	BaseFeeMedianWei.Set(float64(baseFeeMedian))
	PriorityFeeMedianWei.Set(float64(priorityFeeMedian))
	RecommendedFeeWei.Set(float64(recommendedFee))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
