package providers

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/Lucasfoster8/gas-fee-oracle-go/pkg/logging"
)

// weiPerGwei is the scaling factor between gwei and wei.
var weiPerGwei = decimal.NewFromInt(1_000_000_000)

// GetLoggerFromConfig extracts the logger from the config map or returns a
// noop logger. Providers should use this to get the logger passed from main
// instead of creating their own.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}

	// return default noop logger if logger not found
	return logging.NewNoopLogger()
}

// GetEndpointFromConfig extracts the endpoint URL from the config map.
// An empty or missing endpoint is an error at this level; the config layer
// skips providers whose endpoint expanded to empty before creation.
func GetEndpointFromConfig(config map[string]interface{}) (string, error) {
	raw, ok := config["endpoint"]
	if !ok {
		return "", fmt.Errorf("%w", ErrEndpointRequired)
	}
	endpoint, ok := raw.(string)
	if !ok || endpoint == "" {
		return "", fmt.Errorf("%w", ErrEndpointRequired)
	}
	return endpoint, nil
}

// GweiStringToWei parses a decimal gwei string (as used by REST gas oracles)
// and converts it to integer wei, truncating any sub-wei fraction.
func GweiStringToWei(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResponse, s)
	}
	return GweiToWei(d)
}

// GweiToWei converts a decimal gwei value to integer wei.
func GweiToWei(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s gwei", ErrNegativeFee, d.String())
	}
	return d.Mul(weiPerGwei).BigInt().Uint64(), nil
}

// WeiToGweiString formats a wei amount as gwei with two decimal places, for
// the human-readable part of reports.
func WeiToGweiString(wei uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(wei), -9).StringFixed(2)
}
