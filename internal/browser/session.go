package browser

import (
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/ahylith/formagent/config"
	apperrors "github.com/ahylith/formagent/internal/errors"
)

// headlessArgs hardens Chromium for container deployments where no display or
// sandbox is available.
var headlessArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--no-first-run",
	"--disable-extensions",
	"--disable-default-apps",
	"--disable-web-security",
	"--disable-features=VizDisplayCompositor",
}

// Session is one exclusively-owned browsing context. It belongs to exactly one
// job for the job's entire run and must be released when the run ends, on any
// path.
type Session struct {
	JobID string
	Page  Page

	context playwright.BrowserContext
	logger  *slog.Logger
}

// Release tears the session's browsing context down. Safe to call once per
// session; errors are logged, not returned, because teardown runs on both the
// success and failure paths.
func (s *Session) Release() {
	if s == nil || s.context == nil {
		return
	}
	if err := s.context.Close(); err != nil {
		s.logger.Error("close browser context failed", "job_id", s.JobID, "error", err)
	}
	s.context = nil
}

// Manager owns the Playwright driver and hands out one isolated browsing
// context per running job. Browsers are launched lazily per headless mode so a
// headed debugging job can coexist with headless production jobs.
type Manager struct {
	cfg    config.BrowserConfig
	logger *slog.Logger

	mu       sync.Mutex
	pw       *playwright.Playwright
	browsers map[bool]playwright.Browser
}

// NewManager starts the Playwright driver. Browsers are launched on first use.
func NewManager(cfg config.BrowserConfig, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, apperrors.Session("failed to start playwright driver", err)
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		pw:       pw,
		browsers: make(map[bool]playwright.Browser),
	}, nil
}

// Acquire creates the browsing context and page for one job. The caller owns
// the returned session exclusively and must Release it.
func (m *Manager) Acquire(jobID string, headless bool) (*Session, error) {
	browser, err := m.browserFor(headless)
	if err != nil {
		return nil, err
	}

	context, err := browser.NewContext()
	if err != nil {
		return nil, apperrors.Session("failed to create browser context", err)
	}
	page, err := context.NewPage()
	if err != nil {
		if cerr := context.Close(); cerr != nil {
			m.logger.Error("close context after page failure", "job_id", jobID, "error", cerr)
		}
		return nil, apperrors.Session("failed to open page", err)
	}

	m.logger.Info("browser session acquired", "job_id", jobID, "headless", headless)
	return &Session{
		JobID:   jobID,
		Page:    &pwPage{page: page},
		context: context,
		logger:  m.logger,
	}, nil
}

func (m *Manager) browserFor(headless bool) (playwright.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.browsers[headless]; ok && b.IsConnected() {
		return b, nil
	}

	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(headless)}
	if headless {
		opts.Args = headlessArgs
	}
	browser, err := m.pw.Chromium.Launch(opts)
	if err != nil {
		return nil, apperrors.Session("failed to launch chromium", err)
	}
	m.browsers[headless] = browser
	return browser, nil
}

// Close shuts down all launched browsers and the driver.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for mode, browser := range m.browsers {
		if err := browser.Close(); err != nil {
			m.logger.Error("close browser failed", "headless", mode, "error", err)
		}
	}
	m.browsers = make(map[bool]playwright.Browser)

	if m.pw == nil {
		return nil
	}
	err := m.pw.Stop()
	m.pw = nil
	return err
}
