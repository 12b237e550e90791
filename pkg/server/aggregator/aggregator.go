// Package aggregator computes a robust fee recommendation from provider samples.
package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/metrics"
)

const (
	// MADThreshold is the number of median absolute deviations beyond which
	// a value counts as an outlier.
	MADThreshold = 3

	// MinFilterSize is the smallest sample count the MAD filter operates on.
	// Below this the filter trusts all points rather than risk discarding
	// legitimate data from a thin sample set.
	MinFilterSize = 4

	// MinimumTipWei is the floor for the priority fee component, in wei.
	MinimumTipWei = 1_000_000

	// Jitter is a 12% buffer added to the base fee to absorb fluctuation
	// between estimation and submission, expressed as a rational to keep
	// the arithmetic exact.
	jitterNumerator   = 112
	jitterDenominator = 100
)

// Aggregator combines provider samples into a single fee recommendation.
type Aggregator struct {
	logger *logging.Logger
}

// New creates an aggregator.
func New(logger *logging.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate computes a recommendation from the given sample set. The base fee
// and priority fee columns are outlier-filtered independently; a provider
// whose value was rejected as an outlier still counts as participating.
// An empty sample set is a fatal condition for the run.
func (a *Aggregator) Aggregate(samples SampleSet) (*Recommendation, error) {
	start := time.Now()
	defer func() {
		metrics.RecordAggregation(time.Since(start))
	}()

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w", ErrEmptySampleSet)
	}

	providers := make([]string, 0, len(samples))
	baseFees := make([]uint64, 0, len(samples))
	priorityFees := make([]uint64, 0, len(samples))
	for _, s := range samples {
		providers = append(providers, s.Provider)
		baseFees = append(baseFees, s.BaseFee)
		priorityFees = append(priorityFees, s.PriorityFee)
	}

	filteredBase := a.filterColumn("base_fee", baseFees)
	filteredPriority := a.filterColumn("priority_fee", priorityFees)

	baseMedian := Median(filteredBase)
	priorityMedian := Median(filteredPriority)
	recommended := Recommend(baseMedian, priorityMedian)

	metrics.RecordRecommendation(baseMedian, priorityMedian, recommended)

	a.logger.Debug("Aggregated fee samples",
		"providers", len(providers),
		"base_fee_median", baseMedian,
		"priority_fee_median", priorityMedian,
		"recommended_fee", recommended)

	return &Recommendation{
		Providers:         providers,
		BaseFeeMedian:     baseMedian,
		PriorityFeeMedian: priorityMedian,
		RecommendedFee:    recommended,
		Timestamp:         time.Now(),
	}, nil
}

// filterColumn applies the MAD filter to one fee column and records rejections.
func (a *Aggregator) filterColumn(column string, values []uint64) []uint64 {
	filtered := FilterOutliers(values)
	for i := len(filtered); i < len(values); i++ {
		metrics.RecordOutlierRejection(column)
	}
	if len(filtered) < len(values) {
		a.logger.Debug("Rejected outliers",
			"column", column,
			"kept", len(filtered),
			"dropped", len(values)-len(filtered))
	}
	return filtered
}

// Median returns the median of the values. The input is not mutated. An empty
// input returns 0; callers that cannot treat 0 as an answer must check first.
func Median(values []uint64) uint64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]uint64, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if n%2 == 1 {
		return sorted[n/2]
	}
	lo, hi := sorted[n/2-1], sorted[n/2]
	// Overflow-safe floor of the average of the two middle elements.
	return lo/2 + hi/2 + (lo%2+hi%2)/2
}

// FilterOutliers drops values more than MADThreshold median absolute
// deviations from the median, preserving the order of kept values. Inputs
// shorter than MinFilterSize are returned unchanged.
func FilterOutliers(values []uint64) []uint64 {
	if len(values) < MinFilterSize {
		return values
	}

	med := Median(values)

	deviations := make([]uint64, len(values))
	for i, v := range values {
		deviations[i] = absDiff(v, med)
	}

	mad := Median(deviations)
	if mad == 0 {
		// A zero-width filter would reject any nonzero deviation at all;
		// substitute 1 to keep some tolerance when the bulk is identical.
		mad = 1
	}

	kept := make([]uint64, 0, len(values))
	for _, v := range values {
		if absDiff(v, med) <= MADThreshold*mad {
			kept = append(kept, v)
		}
	}
	return kept
}

// Recommend combines the filtered medians into one actionable fee value:
// floor(baseFeeMedian * 1.12) + max(priorityFeeMedian, MinimumTipWei).
// Exact for baseFeeMedian below ~1.6e19 wei per gas; per-gas fees sit many
// orders of magnitude under that.
func Recommend(baseFeeMedian, priorityFeeMedian uint64) uint64 {
	effectiveTip := priorityFeeMedian
	if effectiveTip < MinimumTipWei {
		effectiveTip = MinimumTipWei
	}
	// floor(base * 112/100) split into quotient and remainder to keep the
	// intermediate product within uint64 for per-gas fee magnitudes.
	q, r := baseFeeMedian/jitterDenominator, baseFeeMedian%jitterDenominator
	jittered := q*jitterNumerator + r*jitterNumerator/jitterDenominator
	return jittered + effectiveTip
}

func absDiff(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return b - a
}
