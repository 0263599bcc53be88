// Package extractor turns a product detail page URL from a third-party
// marketplace into a normalized CanonicalProduct: platform dispatch,
// multi-strategy extraction over fetched or rendered HTML, field
// normalization and review flagging.
package extractor

import (
	"context"
	"log/slog"

	"github.com/dropflow/product-extractor/internal/fetch"
	"github.com/dropflow/product-extractor/internal/models"
	"github.com/dropflow/product-extractor/internal/review"
)

// Renderer is the headless-render fallback: it returns the HTML of a
// page after client-side scripts have populated it. readyExpr is the
// platform's in-page readiness probe the poll loop waits on.
type Renderer interface {
	RenderHTML(ctx context.Context, url, readyExpr string) (string, error)
}

type platformExtractor interface {
	extract(p *page, rec *models.CanonicalProduct)
}

// Options tunes pipeline behavior per deployment.
type Options struct {
	// StripDiagnostics removes the debug payload from every record
	// before it leaves the pipeline (production mode).
	StripDiagnostics bool
	// RenderPlatforms lists platforms whose plain-fetch extraction is
	// known to be insufficient; they go through the renderer first.
	RenderPlatforms []string
}

type Service struct {
	fetcher  fetch.Fetcher
	renderer Renderer
	logger   *slog.Logger
	opts     Options
	render   map[models.Platform]bool

	aliexpress platformExtractor
	amazon     platformExtractor
	alibaba    platformExtractor
	generic    platformExtractor
}

// NewService wires the pipeline. renderer may be nil; rendering then
// degrades to plain fetching.
func NewService(fetcher fetch.Fetcher, renderer Renderer, opts Options) *Service {
	logger := slog.Default().With("component", "extractor")

	render := make(map[models.Platform]bool, len(opts.RenderPlatforms))
	for _, name := range opts.RenderPlatforms {
		render[models.Platform(name)] = true
	}

	return &Service{
		fetcher:    fetcher,
		renderer:   renderer,
		logger:     logger,
		opts:       opts,
		render:     render,
		aliexpress: newAliExpressExtractor(logger),
		amazon:     newAmazonExtractor(logger),
		alibaba:    newAlibabaExtractor(logger),
		generic:    newGenericExtractor(logger),
	}
}

// ExtractProduct ingests a product page URL and produces a canonical
// record. It fails only on unparsable URL syntax; every internal failure
// short of that degrades to a partially-filled, review-flagged record so
// bulk imports never block on one bad page.
func (s *Service) ExtractProduct(ctx context.Context, rawURL string) (*models.CanonicalProduct, error) {
	return s.extract(ctx, rawURL, false)
}

// ExtractProductRendered is the explicit headless entry point: the page
// is rendered regardless of platform defaults.
func (s *Service) ExtractProductRendered(ctx context.Context, rawURL string) (*models.CanonicalProduct, error) {
	return s.extract(ctx, rawURL, true)
}

func (s *Service) extract(ctx context.Context, rawURL string, forceRender bool) (*models.CanonicalProduct, error) {
	platform, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}

	rec := models.NewCanonicalProduct(platform, rawURL)
	rec.ExternalID = externalID(platform, rawURL)

	html := s.obtainHTML(ctx, rawURL, platform, forceRender, rec)
	if html != "" {
		p := newPage(html)
		s.extractorFor(platform).extract(p, rec)
	}

	review.Flag(rec)

	s.logger.Info("extraction finished",
		"url", rawURL,
		"platform", platform,
		"needs_review", rec.NeedsManualReview,
		"images", len(rec.Images),
	)

	if s.opts.StripDiagnostics {
		rec.StripDiagnostics()
	}
	return rec, nil
}

// obtainHTML picks the retrieval path. Render failures fall back to plain
// fetching; fetch failures leave whatever partial body was obtained. An
// empty return means the record keeps its safe defaults.
func (s *Service) obtainHTML(ctx context.Context, rawURL string, platform models.Platform, forceRender bool, rec *models.CanonicalProduct) string {
	if s.renderer != nil && (forceRender || s.render[platform]) {
		html, err := s.renderer.RenderHTML(ctx, rawURL, readyExpr(platform))
		if err == nil && html != "" {
			rec.Diagnostics["source"] = "rendered"
			return html
		}
		s.logger.Warn("render failed, falling back to fetch", "url", rawURL, "error", err)
		rec.Diagnostics["render_error"] = errText(err)
	}

	resp, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		// Recovered locally: proceed with partial HTML if any.
		s.logger.Warn("fetch failed", "url", rawURL, "error", err)
		rec.Diagnostics["fetch_error"] = errText(err)
	}
	if resp == nil {
		return ""
	}
	rec.Diagnostics["source"] = "fetched"
	rec.Diagnostics["status_code"] = resp.StatusCode
	return resp.Body
}

func (s *Service) extractorFor(platform models.Platform) platformExtractor {
	switch platform {
	case models.PlatformAliExpress:
		return s.aliexpress
	case models.PlatformAmazon:
		return s.amazon
	case models.PlatformAlibaba:
		return s.alibaba
	default:
		// CJ pages expose standard storefront metadata; the generic
		// vocabulary covers them.
		return s.generic
	}
}

// readyExpr is the platform's known in-page data-object probe used by the
// headless poll loop.
func readyExpr(platform models.Platform) string {
	switch platform {
	case models.PlatformAliExpress:
		return aliExpressReadyExpr
	case models.PlatformAmazon:
		return amazonReadyExpr
	case models.PlatformAlibaba:
		return alibabaReadyExpr
	default:
		return genericReadyExpr
	}
}

func errText(err error) string {
	if err == nil {
		return "empty render result"
	}
	return err.Error()
}
