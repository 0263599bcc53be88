package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/dropflow/product-extractor/internal/config"
	"github.com/dropflow/product-extractor/internal/ratelimit"
)

// Error is returned when a URL could not be fetched after exhausting
// retries. It carries the last underlying cause and, for HTTP-level
// failures, the status code.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Response is the raw retrieval result. The fetch layer never parses
// content; extraction happens downstream.
type Response struct {
	StatusCode int
	Body       string
}

// Fetcher retrieves a product page. Implemented by Client; extractors
// depend on the interface so tests can serve fixtures.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

type Client struct {
	http       *http.Client
	limiter    *ratelimit.HostLimiter
	userAgents []string
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

func NewClient(cfg config.FetcherConfig) *Client {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		limiter:    ratelimit.NewHostLimiter(cfg.RateLimitMin, cfg.RateLimitMax),
		userAgents: cfg.UserAgents,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.BackoffBase,
		logger:     slog.Default().With("component", "fetch"),
	}
}

// Fetch retrieves rawURL with browser-like headers. Network errors and 5xx
// responses are retried up to MaxRetries times with exponential backoff
// (base doubling per attempt); 4xx responses are permanent and returned
// immediately. On failure the last response body obtained, if any, is
// still returned alongside the error so callers can degrade gracefully.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	var lastResp *Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			c.logger.Info("retrying fetch", "url", rawURL, "attempt", attempt+1, "delay", delay)

			select {
			case <-ctx.Done():
				return lastResp, &Error{URL: rawURL, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx, parsed.Host); err != nil {
			return lastResp, &Error{URL: rawURL, Err: err}
		}

		resp, err := c.doRequest(ctx, rawURL)
		if err != nil {
			lastErr = err
			c.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt+1, "error", err)
			continue
		}

		lastResp = resp

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 400:
			return resp, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			c.logger.Warn("fetch got server error", "url", rawURL, "status", resp.StatusCode, "attempt", attempt+1)
			continue
		default:
			// 4xx is permanent, retrying will not help.
			return resp, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("client error: status %d", resp.StatusCode)}
		}
	}

	fetchErr := &Error{URL: rawURL, Err: lastErr}
	if lastResp != nil {
		fetchErr.StatusCode = lastResp.StatusCode
	}
	return lastResp, fetchErr
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	c.setBrowserHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}

// setBrowserHeaders applies a browser-like header set to reduce trivial
// bot-blocking. The User-Agent rotates across the configured pool.
func (c *Client) setBrowserHeaders(req *http.Request) {
	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	if len(c.userAgents) > 0 {
		ua = c.userAgents[rand.Intn(len(c.userAgents))]
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-PE,es;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
