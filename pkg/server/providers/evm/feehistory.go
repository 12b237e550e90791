// Package evm provides fee providers that speak Ethereum JSON-RPC.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/version"
)

const (
	feeHistoryBlockCount = 1
	feeHistoryTimeout    = 10 * time.Second
)

// defaultRewardPercentiles are the percentile-indexed reward values requested
// from the node. The provider-side priority fee is the median of these.
var defaultRewardPercentiles = []float64{25, 50, 75}

// FeeHistoryProvider fetches fee samples from any Ethereum JSON-RPC endpoint
// via eth_feeHistory.
type FeeHistoryProvider struct {
	*providers.BaseProvider
	percentiles []float64
	client      *rpc.Client
}

// feeHistoryResult mirrors the eth_feeHistory response shape.
type feeHistoryResult struct {
	OldestBlock  *hexutil.Big     `json:"oldestBlock"`
	Reward       [][]*hexutil.Big `json:"reward"`
	BaseFee      []*hexutil.Big   `json:"baseFeePerGas"`
	GasUsedRatio []float64        `json:"gasUsedRatio"`
}

// NewFeeHistoryProvider creates a new eth_feeHistory provider
func NewFeeHistoryProvider(config map[string]interface{}) (providers.Provider, error) {
	logger := providers.GetLoggerFromConfig(config)

	endpoint, err := providers.GetEndpointFromConfig(config)
	if err != nil {
		return nil, err
	}

	name := "feehistory"
	if n, ok := config["name"].(string); ok && n != "" {
		name = n
	}

	percentiles := defaultRewardPercentiles
	if raw, ok := config["reward_percentiles"].([]interface{}); ok && len(raw) > 0 {
		parsed := make([]float64, 0, len(raw))
		for _, v := range raw {
			switch p := v.(type) {
			case float64:
				parsed = append(parsed, p)
			case int:
				parsed = append(parsed, float64(p))
			default:
				return nil, fmt.Errorf("%w: reward_percentiles must be numbers", providers.ErrInvalidConfig)
			}
		}
		percentiles = parsed
	}

	base := providers.NewBaseProvider(name, providers.ProviderTypeEVM, endpoint, logger)

	return &FeeHistoryProvider{
		BaseProvider: base,
		percentiles:  percentiles,
	}, nil
}

// Initialize dials the JSON-RPC endpoint
func (p *FeeHistoryProvider) Initialize(ctx context.Context) error {
	client, err := rpc.DialOptions(ctx, p.Endpoint(),
		rpc.WithHeader("User-Agent", version.AgentString()))
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", p.Endpoint(), err)
	}
	p.client = client
	p.Logger().Info("Initialized feehistory provider", "provider", p.Name(), "endpoint", p.Endpoint())
	return nil
}

// Stop halts the provider and cleans up resources
func (p *FeeHistoryProvider) Stop() error {
	if p.client != nil {
		p.client.Close()
	}
	p.Close()
	return nil
}

// FetchSample queries eth_feeHistory for the latest block and returns one
// fee sample. The base fee is the queried block's own base fee; the priority
// fee is the median of the requested percentile rewards.
func (p *FeeHistoryProvider) FetchSample(ctx context.Context) (aggregator.Sample, error) {
	if p.Stopped() {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrProviderStopped)
	}
	if p.client == nil {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrClientNotInitialized)
	}

	ctx, cancel := context.WithTimeout(ctx, feeHistoryTimeout)
	defer cancel()

	var result feeHistoryResult
	err := p.client.CallContext(ctx, &result, "eth_feeHistory",
		hexutil.Uint64(feeHistoryBlockCount), "latest", p.percentiles)
	if err != nil {
		p.SetHealthy(false)
		return aggregator.Sample{}, fmt.Errorf("eth_feeHistory failed: %w", err)
	}

	sample, err := p.parseResult(&result)
	if err != nil {
		p.SetHealthy(false)
		return aggregator.Sample{}, err
	}

	p.SetHealthy(true)
	p.SetLastUpdate(time.Now())
	return sample, nil
}

// parseResult converts a fee history response into a typed sample, or an
// explicit failure. Malformed responses never produce a zero-valued sample.
func (p *FeeHistoryProvider) parseResult(result *feeHistoryResult) (aggregator.Sample, error) {
	if len(result.BaseFee) == 0 || result.BaseFee[0] == nil {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrMissingBaseFee)
	}
	if len(result.Reward) == 0 || len(result.Reward[0]) == 0 {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrMissingReward)
	}

	rewards := make([]uint64, 0, len(result.Reward[0]))
	for _, r := range result.Reward[0] {
		if r == nil {
			return aggregator.Sample{}, fmt.Errorf("%w: null reward", providers.ErrInvalidResponse)
		}
		rewards = append(rewards, (*big.Int)(r).Uint64())
	}

	var block uint64
	if result.OldestBlock != nil {
		block = (*big.Int)(result.OldestBlock).Uint64()
	}

	return aggregator.Sample{
		Provider:    p.Name(),
		BaseFee:     (*big.Int)(result.BaseFee[0]).Uint64(),
		PriorityFee: aggregator.Median(rewards),
		Block:       block,
	}, nil
}

// Register the provider in init
func init() {
	providers.Register("evm.feehistory", func(config map[string]interface{}) (providers.Provider, error) {
		return NewFeeHistoryProvider(config)
	})
}
