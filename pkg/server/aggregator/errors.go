// Package aggregator computes a robust fee recommendation from provider samples.
package aggregator

import "errors"

var (
	// ErrEmptySampleSet indicates that no samples were provided for aggregation.
	ErrEmptySampleSet = errors.New("empty sample set")
)
