// Package rest provides fee providers backed by REST gas oracle APIs.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/aggregator"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/server/providers"
	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/version"
)

const etherscanTimeout = 10 * time.Second

// EtherscanProvider fetches fee samples from an Etherscan-style gas tracker API.
type EtherscanProvider struct {
	*providers.BaseProvider
	apiKey string
	client *http.Client
}

// etherscanGasOracleResponse mirrors the gastracker gasoracle response shape.
// All gas prices are decimal gwei strings.
type etherscanGasOracleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  struct {
		LastBlock       string `json:"LastBlock"`
		SafeGasPrice    string `json:"SafeGasPrice"`
		ProposeGasPrice string `json:"ProposeGasPrice"`
		FastGasPrice    string `json:"FastGasPrice"`
		SuggestBaseFee  string `json:"suggestBaseFee"`
	} `json:"result"`
}

// NewEtherscanProvider creates a new Etherscan gas tracker provider
func NewEtherscanProvider(config map[string]interface{}) (providers.Provider, error) {
	logger := providers.GetLoggerFromConfig(config)

	endpoint, err := providers.GetEndpointFromConfig(config)
	if err != nil {
		return nil, err
	}

	name := "etherscan"
	if n, ok := config["name"].(string); ok && n != "" {
		name = n
	}

	apiKey, _ := config["api_key"].(string)

	base := providers.NewBaseProvider(name, providers.ProviderTypeREST, endpoint, logger)

	return &EtherscanProvider{
		BaseProvider: base,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: etherscanTimeout},
	}, nil
}

// Initialize prepares the provider for operation
func (p *EtherscanProvider) Initialize(ctx context.Context) error {
	p.Logger().Info("Initialized etherscan provider", "provider", p.Name(), "endpoint", p.Endpoint())
	return nil
}

// Stop halts the provider and cleans up resources
func (p *EtherscanProvider) Stop() error {
	p.Close()
	return nil
}

// FetchSample queries the gas tracker once and returns one fee sample. The
// priority fee is the median of the three tier prices minus the suggested
// base fee, clamped at zero.
func (p *EtherscanProvider) FetchSample(ctx context.Context) (aggregator.Sample, error) {
	if p.Stopped() {
		return aggregator.Sample{}, fmt.Errorf("%w", providers.ErrProviderStopped)
	}

	url := p.Endpoint() + "?module=gastracker&action=gasoracle"
	if p.apiKey != "" {
		url += "&apikey=" + p.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return aggregator.Sample{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := p.client.Do(req)
	if err != nil {
		p.SetHealthy(false)
		return aggregator.Sample{}, fmt.Errorf("failed to fetch gas oracle: %w", err)
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

// parseResponse converts a gas oracle response body into a typed sample.
func (p *EtherscanProvider) parseResponse(body []byte) (aggregator.Sample, error) {
	var parsed etherscanGasOracleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return aggregator.Sample{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if parsed.Status != "1" {
		return aggregator.Sample{}, fmt.Errorf("%w: %s", providers.ErrAPIError, parsed.Message)
	}

	baseFee, err := providers.GweiStringToWei(parsed.Result.SuggestBaseFee)
	if err != nil {
		return aggregator.Sample{}, fmt.Errorf("suggestBaseFee: %w", err)
	}

	tiers := []string{
		parsed.Result.SafeGasPrice,
		parsed.Result.ProposeGasPrice,
		parsed.Result.FastGasPrice,
	}
	tips := make([]uint64, 0, len(tiers))
	for _, tier := range tiers {
		price, err := providers.GweiStringToWei(tier)
		if err != nil {
			return aggregator.Sample{}, fmt.Errorf("tier price: %w", err)
		}
		// Tier prices include the base fee; the tip is the remainder.
		tip := uint64(0)
		if price > baseFee {
			tip = price - baseFee
		}
		tips = append(tips, tip)
	}

	block, err := strconv.ParseUint(parsed.Result.LastBlock, 10, 64)
	if err != nil {
		return aggregator.Sample{}, fmt.Errorf("%w: LastBlock %q", providers.ErrInvalidResponse, parsed.Result.LastBlock)
	}

	return aggregator.Sample{
		Provider:    p.Name(),
		BaseFee:     baseFee,
		PriorityFee: aggregator.Median(tips),
		Block:       block,
	}, nil
}

// Register the provider in init
func init() {
	providers.Register("rest.etherscan", func(config map[string]interface{}) (providers.Provider, error) {
		return NewEtherscanProvider(config)
	})
}
