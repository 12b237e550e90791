package providers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGweiStringToWei(t *testing.T) {
	tests := []struct {
		input  string
		expect uint64
	}{
		{"0", 0},
		{"1", 1_000_000_000},
		{"19.5", 19_500_000_000},
		{"0.000000001", 1},
		{"0.0000000019", 1}, // sub-wei fraction truncated
	}

	for _, tt := range tests {
		got, err := GweiStringToWei(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expect, got, tt.input)
	}
}

func TestGweiStringToWei_Invalid(t *testing.T) {
	_, err := GweiStringToWei("not-a-number")
	require.ErrorIs(t, err, ErrInvalidResponse)

	_, err = GweiStringToWei("-1")
	require.ErrorIs(t, err, ErrNegativeFee)
}

func TestGweiToWei_Negative(t *testing.T) {
	_, err := GweiToWei(decimal.NewFromFloat(-0.5))
	require.ErrorIs(t, err, ErrNegativeFee)
}

func TestWeiToGweiString(t *testing.T) {
	assert.Equal(t, "0.00", WeiToGweiString(0))
	assert.Equal(t, "1.00", WeiToGweiString(1_000_000_000))
	assert.Equal(t, "19.50", WeiToGweiString(19_500_000_000))
	assert.Equal(t, "0.00", WeiToGweiString(1_000_000)) // minimum tip rounds below a hundredth of a gwei
	assert.Equal(t, "21.84", WeiToGweiString(21_840_000_000))
}

func TestGetEndpointFromConfig(t *testing.T) {
	endpoint, err := GetEndpointFromConfig(map[string]interface{}{"endpoint": "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "http://x", endpoint)

	_, err = GetEndpointFromConfig(map[string]interface{}{})
	require.ErrorIs(t, err, ErrEndpointRequired)

	_, err = GetEndpointFromConfig(map[string]interface{}{"endpoint": ""})
	require.ErrorIs(t, err, ErrEndpointRequired)

	_, err = GetEndpointFromConfig(map[string]interface{}{"endpoint": 42})
	require.ErrorIs(t, err, ErrEndpointRequired)
}
