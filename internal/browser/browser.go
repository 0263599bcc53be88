// Package browser owns the process-wide headless browser used by the
// render fallback. The browser is expensive to start, so it is created
// lazily on first acquisition and reused; pages are cheap and isolated,
// so every extraction gets its own and must release it.
package browser

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "es-PE,es;q=0.9,en;q=0.8",
		TimezoneID:     "America/Lima",
		Locale:         "es-PE",
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Encoding": "gzip, deflate, br",
			"DNT":             "1",
		},
	}
}

// Sub-resource types blocked during navigation: product data never lives
// in them and skipping them cuts load time and bandwidth.
var blockedResourceTypes = map[string]struct{}{
	"image":      {},
	"stylesheet": {},
	"font":       {},
	"media":      {},
}

// Manager holds the shared browser instance. Lifetime is owned by the
// caller that constructed it, not by any single extraction: Close is an
// explicit, separate lifecycle call.
type Manager struct {
	opts    *Options
	logger  *slog.Logger
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	closed  bool
}

func NewManager(opts *Options) *Manager {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Manager{
		opts:   opts,
		logger: slog.Default().With("component", "browser"),
	}
}

// AcquirePage hands out a fresh, isolated page scoped to the shared
// browser, starting the browser on first use. The returned release func
// closes the page and must run on every exit path.
func (m *Manager) AcquirePage() (playwright.Page, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, fmt.Errorf("browser manager is closed")
	}
	if err := m.ensureStartedLocked(); err != nil {
		return nil, nil, err
	}

	page, err := m.context.NewPage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(m.opts.Timeout.Milliseconds()))

	release := func() {
		if err := page.Close(); err != nil {
			m.logger.Warn("failed to close page", "error", err)
		}
	}
	return page, release, nil
}

func (m *Manager) ensureStartedLocked() error {
	if m.browser != nil {
		return nil
	}

	m.logger.Info("starting headless browser")

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &m.opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--window-size=1920,1080",
			"--user-agent=" + m.opts.UserAgent,
		},
	}
	if m.opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: m.opts.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         &m.opts.UserAgent,
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            &m.opts.Locale,
		TimezoneId:        &m.opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  m.opts.ViewportWidth,
			Height: m.opts.ViewportHeight,
		},
		ExtraHttpHeaders: m.opts.ExtraHeaders,
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := context.Route("**/*", func(route playwright.Route) {
		if _, blocked := blockedResourceTypes[route.Request().ResourceType()]; blocked {
			route.Abort()
			return
		}
		route.Continue()
	}); err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to install resource filter: %w", err)
	}

	m.pw = pw
	m.browser = browser
	m.context = context
	return nil
}

// Close shuts the shared browser down. Safe to call without a prior
// acquisition and safe to call once only.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.context != nil {
		if err := m.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}
