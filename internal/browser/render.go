package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Renderer retrieves the HTML of a product page after client-side
// scripts have run. Navigation and data-wait timeouts are deliberately
// non-fatal: a partially rendered DOM is still worth handing to the
// strategy waterfall.
type Renderer struct {
	manager         *Manager
	logger          *slog.Logger
	navigateTimeout time.Duration
	pollInterval    time.Duration
	pollAttempts    int
}

type RendererConfig struct {
	NavigateTimeout time.Duration
	PollInterval    time.Duration
	PollAttempts    int
}

func NewRenderer(manager *Manager, cfg RendererConfig) *Renderer {
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.PollAttempts == 0 {
		cfg.PollAttempts = 20
	}

	return &Renderer{
		manager:         manager,
		logger:          slog.Default().With("component", "renderer"),
		navigateTimeout: cfg.NavigateTimeout,
		pollInterval:    cfg.PollInterval,
		pollAttempts:    cfg.PollAttempts,
	}
}

// RenderHTML navigates an isolated page to url, waits for readyExpr to
// become true within the poll budget, and returns the rendered document.
// The page is released on every exit path.
func (r *Renderer) RenderHTML(ctx context.Context, url, readyExpr string) (string, error) {
	page, release, err := r.manager.AcquirePage()
	if err != nil {
		return "", fmt.Errorf("failed to acquire page: %w", err)
	}
	defer release()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(r.navigateTimeout.Milliseconds())),
	}); err != nil {
		// Partial DOM may already be usable; keep going.
		r.logger.Warn("navigation did not complete", "url", url, "error", err)
	}

	r.awaitData(ctx, page, url, readyExpr)

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered content: %w", err)
	}
	return html, nil
}

// awaitData polls for the platform's in-page data object. The loop exits
// early on success and unconditionally after the attempt budget; either
// way the caller proceeds to evaluation.
func (r *Renderer) awaitData(ctx context.Context, page playwright.Page, url, readyExpr string) {
	for attempt := 1; attempt <= r.pollAttempts; attempt++ {
		if ctx.Err() != nil {
			r.logger.Warn("data wait cancelled", "url", url, "attempt", attempt)
			return
		}

		ready, err := page.Evaluate("() => Boolean(" + readyExpr + ")")
		if err == nil {
			if ok, _ := ready.(bool); ok {
				r.logger.Debug("page data ready", "url", url, "attempt", attempt)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.pollInterval):
		}
	}

	r.logger.Warn("page data wait budget exhausted", "url", url, "attempts", r.pollAttempts)
}
