// Package aggregator computes a robust fee recommendation from provider samples.
package aggregator

import "time"

// Sample is one fee observation from one provider. All fee values are in wei.
type Sample struct {
	Provider    string `json:"provider"`
	BaseFee     uint64 `json:"base_fee"`
	PriorityFee uint64 `json:"priority_fee"`
	Block       uint64 `json:"block"`
}

// SampleSet is an ordered sequence of samples (collection order).
type SampleSet []Sample

// Recommendation is the result of one aggregation run. It is constructed
// once per run and never mutated afterwards.
type Recommendation struct {
	Providers         []string  `json:"providers"`
	BaseFeeMedian     uint64    `json:"base_fee_median"`
	PriorityFeeMedian uint64    `json:"priority_fee_median"`
	RecommendedFee    uint64    `json:"recommended_fee"`
	Timestamp         time.Time `json:"timestamp"`
}
