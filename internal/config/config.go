// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - The returned Config is treated as immutable and passed by injection.
package config

import "time"

// DefaultProviderEndpoint is the TomTom Routing calculateRoute base URL.
const DefaultProviderEndpoint = "https://api.tomtom.com/routing/1/calculateRoute"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIKey is the routing provider key. Read from TOMTOM_API_KEY.
	APIKey string `koanf:"tomtom_api_key"`

	// ProviderEndpoint is the base URL the origin:destination segment is appended to.
	ProviderEndpoint string `koanf:"provider_endpoint"`

	// ProviderTimeoutMS bounds a single upstream call.
	ProviderTimeoutMS int `koanf:"provider_timeout_ms"`

	// MaxBodyBytes caps the inbound request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MaxResponseBytes caps the upstream payload read into memory.
	MaxResponseBytes int64 `koanf:"max_response_bytes"`

	// ForwardFuelType maps fuelType onto vehicleEngineType. Off by default.
	ForwardFuelType bool `koanf:"forward_fuel_type"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		ProviderEndpoint:  DefaultProviderEndpoint,
		ProviderTimeoutMS: 10_000,
		MaxBodyBytes:      1 << 20,
		MaxResponseBytes:  16 << 20,
		ForwardFuelType:   false,
		MetricsEnabled:    true,
	}
}

// ProviderTimeout returns ProviderTimeoutMS as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}
