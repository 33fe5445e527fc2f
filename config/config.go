package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server configuration
//   - browser.go: Browser session configuration
//   - jobs.go: Job processing configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (headed browser default, looser logging).
	IsDev bool `env:"DEV" envDefault:"false"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Browser session configuration
	Browser BrowserConfig `envPrefix:"BROWSER_"`

	// Job processing configuration
	Jobs JobsConfig `envPrefix:"JOBS_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Browser.Sanitize()
	c.Jobs.Sanitize()
	c.Observability.Sanitize()
}
