package config

import "strings"

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig `envPrefix:"METRICS_"`
}

// ObservabilityMetricsConfig configures the StatsD metrics sink.
type ObservabilityMetricsConfig struct {
	// Enabled toggles metric emission.
	Enabled bool `env:"ENABLED" envDefault:"false"`

	// StatsdAddress is the UDP host:port of the StatsD endpoint.
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:""`
}

// IsEnabled reports whether metrics should be emitted.
func (m ObservabilityMetricsConfig) IsEnabled() bool {
	return m.Enabled && strings.TrimSpace(m.StatsdAddress) != ""
}

// Sanitize applies guardrails to observability configuration values.
func (o *ObservabilityConfig) Sanitize() {
	o.Metrics.StatsdAddress = strings.TrimSpace(o.Metrics.StatsdAddress)
}
