package browser

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/ahylith/formagent/internal/errors"
)

// loginPathMarkers flag URLs that mean the target site bounced us to its
// sign-in page. Authentication is manual: navigation waits, bounded, for a
// human to log in before continuing.
var loginPathMarkers = []string{"sign_in", "login"}

const (
	// loginPollInterval is how often the URL is re-checked while waiting for
	// a manual login to clear.
	loginPollInterval = 1 * time.Second
	// postNavigationIdle bounds the settle after load. Best effort: timing
	// out here is not a navigation failure.
	postNavigationIdle = 10 * time.Second
)

// Navigator loads the target form URL, riding out the manual-authentication
// interstitial when the site redirects to its login page.
type Navigator struct {
	page       Page
	navTimeout time.Duration
	loginWait  time.Duration
	logger     *slog.Logger
}

// NewNavigator builds a Navigator.
func NewNavigator(page Page, navTimeout, loginWait time.Duration, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	if loginWait <= 0 {
		loginWait = 60 * time.Second
	}
	return &Navigator{page: page, navTimeout: navTimeout, loginWait: loginWait, logger: logger}
}

// Go navigates to url and waits for the page to be usable. A login
// interstitial that never clears within the bound is logged and tolerated;
// the subsequent fill will fail on its own selectors if the page is still a
// login form.
func (n *Navigator) Go(ctx context.Context, url string) error {
	if err := n.page.Goto(url, n.navTimeout); err != nil {
		return apperrors.Navigationf("failed to navigate to %s: %v", url, err)
	}

	if onLoginPage(n.page.URL()) {
		n.logger.Info("login page detected, waiting for manual authentication", "url", n.page.URL())
		n.waitForLogin(ctx)
	}

	if err := n.page.WaitForIdle(postNavigationIdle); err != nil {
		n.logger.Debug("network never settled after navigation", "error", err)
	}
	return nil
}

// waitForLogin polls until the URL leaves the login path or the bound lapses.
func (n *Navigator) waitForLogin(ctx context.Context) {
	deadline := time.Now().Add(n.loginWait)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		if !onLoginPage(n.page.URL()) {
			n.logger.Info("authentication cleared, continuing")
			return
		}
		n.page.Sleep(loginPollInterval)
	}
	n.logger.Warn("login wait timed out, continuing anyway", "url", n.page.URL())
}

func onLoginPage(url string) bool {
	for _, marker := range loginPathMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}
