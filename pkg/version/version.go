// Package version provides version information for the gas oracle application.
package version

// Version is the current version of the gas-fee-oracle-go application.
const Version = "1.0.0"

// AgentString returns the full agent string with versioning.
// Format: gas-fee-oracle-go@v{version}
func AgentString() string {
	return "gas-fee-oracle-go@v" + Version
}
