package config

import "time"

// BrowserConfig contains browser session configuration.
type BrowserConfig struct {
	// Headless launches the browser without a visible window. The target
	// site's manual login interstitial generally requires a headed session,
	// so development defaults to headed.
	Headless bool `env:"HEADLESS" envDefault:"true"`

	// NavigationTimeout bounds a page load.
	NavigationTimeout time.Duration `env:"NAVIGATION_TIMEOUT" envDefault:"30s"`

	// SelectorTimeout is the per-candidate wait used by the selector resolver.
	SelectorTimeout time.Duration `env:"SELECTOR_TIMEOUT" envDefault:"3s"`

	// LoginWait bounds how long navigation waits for a manual sign-in to
	// clear before continuing anyway.
	LoginWait time.Duration `env:"LOGIN_WAIT" envDefault:"60s"`

	// ScreenshotDir is where per-row screenshots are written.
	ScreenshotDir string `env:"SCREENSHOT_DIR" envDefault:"screenshots"`
}

// Sanitize applies guardrails to browser configuration values.
func (b *BrowserConfig) Sanitize() {
	if b.NavigationTimeout <= 0 {
		b.NavigationTimeout = 30 * time.Second
	}
	if b.SelectorTimeout <= 0 {
		b.SelectorTimeout = 3 * time.Second
	}
	if b.LoginWait <= 0 {
		b.LoginWait = 60 * time.Second
	}
	if b.ScreenshotDir == "" {
		b.ScreenshotDir = "screenshots"
	}
}
