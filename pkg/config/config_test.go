package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_RPC_URL", "http://rpc.example:8545")
	t.Setenv("TEST_API_KEY", "secret")

	path := writeConfig(t, `
server:
  http:
    addr: ":8080"
  cache_ttl: "12s"
providers:
  - type: evm
    name: feehistory
    enabled: true
    config:
      endpoint: "${TEST_RPC_URL}"
  - type: rest
    name: etherscan
    enabled: true
    config:
      endpoint: "https://api.etherscan.io/api"
      api_key: "${TEST_API_KEY}"
logging:
  level: info
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "http://rpc.example:8545", cfg.Providers[0].GetString("endpoint", ""))
	assert.Equal(t, "secret", cfg.Providers[1].GetString("api_key", ""))
	assert.Equal(t, 12*time.Second, cfg.Server.CacheTTL.ToDuration())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
providers:
  - type: rest
    name: etherscan
    enabled: true
    config:
      endpoint: "https://api.etherscan.io/api"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTP.Addr)
	assert.Equal(t, 12*time.Second, cfg.Server.CacheTTL.ToDuration())
	assert.Equal(t, 10*time.Second, cfg.Server.CollectTimeout.ToDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestEnabledProviders_SkipsEmptyEndpoint(t *testing.T) {
	// An endpoint whose environment variable is absent expands to empty;
	// the provider is skipped rather than rejected.
	path := writeConfig(t, `
providers:
  - type: evm
    name: feehistory
    enabled: true
    config:
      endpoint: "${DEFINITELY_NOT_SET_RPC_URL}"
  - type: rest
    name: etherscan
    enabled: true
    config:
      endpoint: "https://api.etherscan.io/api"
  - type: rest
    name: blocknative
    enabled: false
    config:
      endpoint: "https://api.blocknative.com/gasprices/blockprices"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	enabled := cfg.EnabledProviders()
	require.Len(t, enabled, 1)
	assert.Equal(t, "etherscan", enabled[0].Name)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{
			name: "no providers",
			cfg: Config{
				Logging: LoggingConfig{Level: "info", Format: "json"},
			},
			want: ErrNoProvidersConfigured,
		},
		{
			name: "invalid provider type",
			cfg: Config{
				Providers: []ProviderConfig{{Type: "ftp", Name: "x"}},
				Logging:   LoggingConfig{Level: "info", Format: "json"},
			},
			want: ErrInvalidProviderType,
		},
		{
			name: "missing provider name",
			cfg: Config{
				Providers: []ProviderConfig{{Type: "rest"}},
				Logging:   LoggingConfig{Level: "info", Format: "json"},
			},
			want: ErrProviderNameRequired,
		},
		{
			name: "invalid log level",
			cfg: Config{
				Providers: []ProviderConfig{{Type: "rest", Name: "etherscan"}},
				Logging:   LoggingConfig{Level: "loud", Format: "json"},
			},
			want: ErrInvalidLogLevel,
		},
		{
			name: "invalid log format",
			cfg: Config{
				Providers: []ProviderConfig{{Type: "rest", Name: "etherscan"}},
				Logging:   LoggingConfig{Level: "info", Format: "xml"},
			},
			want: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDuration_Unmarshal(t *testing.T) {
	path := writeConfig(t, `
server:
  cache_ttl: "90s"
  refresh_interval: "1m"
providers:
  - type: rest
    name: etherscan
    enabled: true
    config:
      endpoint: "https://api.etherscan.io/api"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Server.CacheTTL.ToDuration())
	assert.Equal(t, time.Minute, cfg.Server.RefreshInterval.ToDuration())
}
