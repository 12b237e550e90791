// Package config provides configuration loading and validation for the gas oracle.
package config

import "errors"

var (
	// ErrNoProvidersConfigured indicates that no fee providers are configured.
	ErrNoProvidersConfigured = errors.New("at least one fee provider must be configured")
	// ErrInvalidProviderType indicates that the provider type is invalid.
	ErrInvalidProviderType = errors.New("invalid provider type")
	// ErrProviderNameRequired indicates that provider name is required.
	ErrProviderNameRequired = errors.New("provider name is required")
	// ErrTLSConfigIncomplete indicates that TLS config is incomplete.
	ErrTLSConfigIncomplete = errors.New("TLS cert and key must be specified when TLS is enabled")
	// ErrTLSCertNotFound indicates that the TLS cert file was not found.
	ErrTLSCertNotFound = errors.New("TLS cert file not found")
	// ErrTLSKeyNotFound indicates that the TLS key file was not found.
	ErrTLSKeyNotFound = errors.New("TLS key file not found")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
