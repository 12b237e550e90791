// Package api provides HTTP and WebSocket API endpoints for the fee server.
package api

import (
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
)

// Report is the serialized form of a recommendation: the raw wei values plus
// a human-readable gwei rendering of each, formatted to two decimal places.
type Report struct {
	Providers             []string `json:"providers"`
	BaseFeeMedianWei      uint64   `json:"base_fee_median_wei"`
	PriorityFeeMedianWei  uint64   `json:"priority_fee_median_wei"`
	RecommendedFeeWei     uint64   `json:"recommended_fee_wei"`
	BaseFeeMedianGwei     string   `json:"base_fee_median_gwei"`
	PriorityFeeMedianGwei string   `json:"priority_fee_median_gwei"`
	RecommendedFeeGwei    string   `json:"recommended_fee_gwei"`
	Timestamp             string   `json:"timestamp"`
}

// BuildReport converts a recommendation into its reportable form.
func BuildReport(rec *aggregator.Recommendation) Report {
	return Report{
		Providers:             rec.Providers,
		BaseFeeMedianWei:      rec.BaseFeeMedian,
		PriorityFeeMedianWei:  rec.PriorityFeeMedian,
		RecommendedFeeWei:     rec.RecommendedFee,
		BaseFeeMedianGwei:     providers.WeiToGweiString(rec.BaseFeeMedian),
		PriorityFeeMedianGwei: providers.WeiToGweiString(rec.PriorityFeeMedian),
		RecommendedFeeGwei:    providers.WeiToGweiString(rec.RecommendedFee),
		Timestamp:             rec.Timestamp.Format(time.RFC3339),
	}
}
