// Package providers defines fee provider interfaces and shared implementation.
package providers

import "errors"

var (
	// ErrInvalidConfig indicates that the provider configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEndpointRequired indicates that an endpoint must be configured.
	ErrEndpointRequired = errors.New("endpoint is required")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates an invalid response from the provider.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrAPIError indicates an API-level error returned by the provider.
	ErrAPIError = errors.New("API error")
	// ErrMissingBaseFee indicates the response carried no base fee.
	ErrMissingBaseFee = errors.New("response missing base fee")
	// ErrMissingReward indicates the response carried no priority fee rewards.
	ErrMissingReward = errors.New("response missing priority fee rewards")
	// ErrNegativeFee indicates a fee value that is negative.
	ErrNegativeFee = errors.New("negative fee value")
	// ErrClientNotInitialized indicates that the RPC client is not initialized.
	ErrClientNotInitialized = errors.New("client not initialized")
	// ErrProviderStopped indicates a fetch on a stopped provider.
	ErrProviderStopped = errors.New("provider is stopped")
)
