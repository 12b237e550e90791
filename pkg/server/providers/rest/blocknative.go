// Package rest provides fee providers backed by REST gas oracle APIs.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/version"
)

const blocknativeTimeout = 10 * time.Second

// BlocknativeProvider fetches fee samples from a Blocknative-style block
// prices API.
type BlocknativeProvider struct {
	*providers.BaseProvider
	apiKey string
	client *http.Client
}

// blocknativeResponse mirrors the blockprices response shape. Fee values are
// gwei numbers.
type blocknativeResponse struct {
	System      string `json:"system"`
	Network     string `json:"network"`
	BlockPrices []struct {
		BlockNumber     uint64  `json:"blockNumber"`
		BaseFeePerGas   float64 `json:"baseFeePerGas"`
		EstimatedPrices []struct {
			Confidence           int     `json:"confidence"`
			Price                float64 `json:"price"`
			MaxPriorityFeePerGas float64 `json:"maxPriorityFeePerGas"`
			MaxFeePerGas         float64 `json:"maxFeePerGas"`
		} `json:"estimatedPrices"`
	} `json:"blockPrices"`
}

// NewBlocknativeProvider creates a new Blocknative block prices provider
func NewBlocknativeProvider(config map[string]interface{}) (providers.Provider, error) {
	logger := providers.GetLoggerFromConfig(config)

	endpoint, err := providers.GetEndpointFromConfig(config)
	if err != nil {
		return nil, err
	}

	name := "blocknative"
	if n, ok := config["name"].(string); ok && n != "" {
		name = n
	}

	apiKey, _ := config["api_key"].(string)

	base := providers.NewBaseProvider(name, providers.ProviderTypeREST, endpoint, logger)

	return &BlocknativeProvider{
		BaseProvider: base,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: blocknativeTimeout},
	}, nil
}

// Initialize prepares the provider for operation
func (p *BlocknativeProvider) Initialize(ctx context.Context) error {
	p.Logger().Info("Initialized blocknative provider", "provider", p.Name(), "endpoint", p.Endpoint())
	return nil
}

// Stop halts the provider and cleans up resources
func (p *BlocknativeProvider) Stop() error {
	p.Close()
	return nil
}

// FetchSample queries the block prices API once and returns one fee sample.
// The priority fee is the median of the per-confidence tip estimates for the
// pending block.
func (p *BlocknativeProvider) FetchSample(ctx context.Context) (aggregator.Sample, error) {
	if p.Stopped() {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrProviderStopped)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint(), nil)
	if err != nil {
		return aggregator.Sample{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.AgentString())
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.SetHealthy(false)
		return aggregator.Sample{}, fmt.Errorf("failed to fetch block prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.SetHealthy(false)
		return aggregator.Sample{}, fmt.Errorf("%w: %d", providers.ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.SetHealthy(false)
		return aggregator.Sample{}, fmt.Errorf("failed to read response: %w", err)
	}

	sample, err := p.parseResponse(body)
	if err != nil {
		p.SetHealthy(false)
		return aggregator.Sample{}, err
	}

	p.SetHealthy(true)
	p.SetLastUpdate(time.Now())
	return sample, nil
}

// parseResponse converts a block prices response body into a typed sample.
func (p *BlocknativeProvider) parseResponse(body []byte) (aggregator.Sample, error) {
	var parsed blocknativeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return aggregator.Sample{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(parsed.BlockPrices) == 0 {
		return aggregator.Sample{}, fmt.Errorf("%w: no block prices", providers.ErrInvalidResponse)
	}
	blockPrice := parsed.BlockPrices[0]

	if len(blockPrice.EstimatedPrices) == 0 {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrMissingReward)
	}

	baseFee, err := providers.GweiToWei(decimal.NewFromFloat(blockPrice.BaseFeePerGas))
	if err != nil {
		return aggregator.Sample{}, fmt.Errorf("baseFeePerGas: %w", err)
	}

	tips := make([]uint64, 0, len(blockPrice.EstimatedPrices))
	for _, est := range blockPrice.EstimatedPrices {
		tip, err := providers.GweiToWei(decimal.NewFromFloat(est.MaxPriorityFeePerGas))
		if err != nil {
			return aggregator.Sample{}, fmt.Errorf("maxPriorityFeePerGas: %w", err)
		}
		tips = append(tips, tip)
	}

	return aggregator.Sample{
		Provider:    p.Name(),
		BaseFee:     baseFee,
		PriorityFee: aggregator.Median(tips),
		Block:       blockPrice.BlockNumber,
	}, nil
}

// Register the provider in init
func init() {
	providers.Register("rest.blocknative", func(config map[string]interface{}) (providers.Provider, error) {
		return NewBlocknativeProvider(config)
	})
}
