package metrics

import "github.com/kilianp07/rotables/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string `json:"addr"`
	// APIToken, when set, is required as a bearer token on the /api routes
	// served next to /metrics.
	APIToken string `json:"api_token"`
}
