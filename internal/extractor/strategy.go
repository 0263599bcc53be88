package extractor

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropflow/product-extractor/internal/parse"
)

// page bundles everything the strategy waterfall operates on: the parsed
// DOM, the raw HTML, and the platform's embedded data payload if one was
// found.
type page struct {
	doc     *goquery.Document
	html    string
	payload map[string]any
}

func newPage(html string) *page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// An unparsable document still leaves the raw HTML usable by
		// regex-based strategies.
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return &page{doc: doc, html: html}
}

// loadPayload locates the first marker that yields a parseable embedded
// object literal. Parse failures are logged and swallowed; the DOM
// strategies cover for a missing payload.
func (p *page) loadPayload(logger *slog.Logger, markers ...string) string {
	var found string
	p.doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		body := s.Text()
		for _, marker := range markers {
			if !strings.Contains(body, marker) {
				continue
			}
			literal, err := parse.ExtractObjectLiteral(body, marker)
			if err != nil {
				continue
			}
			payload, err := parse.ParseLenient(literal)
			if err != nil {
				logger.Debug("embedded payload failed to parse", "marker", marker, "error", err)
				continue
			}
			p.payload = payload
			found = marker
			return false
		}
		return true
	})
	return found
}

type stringStrategy func(*page) string

type listStrategy func(*page) []string

// firstString runs the ordered strategies and takes the first non-empty
// result. A panic inside one strategy never prevents the next from
// running; heterogeneous third-party markup makes that a routine event,
// not an exceptional one.
func firstString(p *page, strategies ...stringStrategy) string {
	for _, strategy := range strategies {
		if value := runString(p, strategy); value != "" {
			return value
		}
	}
	return ""
}

func runString(p *page, strategy stringStrategy) (value string) {
	defer func() {
		if r := recover(); r != nil {
			value = ""
		}
	}()
	return strings.TrimSpace(strategy(p))
}

func firstList(p *page, strategies ...listStrategy) []string {
	for _, strategy := range strategies {
		if values := runList(p, strategy); len(values) > 0 {
			return values
		}
	}
	return nil
}

func runList(p *page, strategy listStrategy) (values []string) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
		}
	}()
	return strategy(p)
}

// payloadString resolves the first embedded-payload path carrying a
// non-empty scalar. The path list encodes every payload schema version
// the platform is known to have shipped.
func payloadString(paths ...string) stringStrategy {
	return func(p *page) string {
		if p.payload == nil {
			return ""
		}
		value, _ := parse.LookupString(p.payload, paths...)
		return value
	}
}

// payloadStrings resolves the first payload path holding a non-empty list
// and renders its scalar entries.
func payloadStrings(paths ...string) listStrategy {
	return func(p *page) []string {
		if p.payload == nil {
			return nil
		}
		list, ok := parse.LookupSlice(p.payload, paths...)
		if !ok {
			return nil
		}
		values := make([]string, 0, len(list))
		for _, entry := range list {
			if s := parse.Stringify(entry); s != "" {
				values = append(values, s)
			}
		}
		return values
	}
}

// selectorText takes the first CSS selector whose matched element yields
// non-empty text.
func selectorText(selectors ...string) stringStrategy {
	return func(p *page) string {
		for _, selector := range selectors {
			if text := strings.TrimSpace(p.doc.Find(selector).First().Text()); text != "" {
				return text
			}
		}
		return ""
	}
}

// selectorAttr is selectorText over an attribute instead of text content.
func selectorAttr(attr string, selectors ...string) stringStrategy {
	return func(p *page) string {
		for _, selector := range selectors {
			if value, ok := p.doc.Find(selector).First().Attr(attr); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
		return ""
	}
}

// imageAttrs collects URL-ish attributes from every element the first
// productive selector matches. Lazy-loading pages scatter the real URL
// across src, data-src and data-original.
var imageSourceAttrs = []string{"src", "data-src", "data-original", "content"}

func selectorImages(selectors ...string) listStrategy {
	return func(p *page) []string {
		for _, selector := range selectors {
			var values []string
			p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
				for _, attr := range imageSourceAttrs {
					if value, ok := s.Attr(attr); ok && strings.TrimSpace(value) != "" {
						values = append(values, strings.TrimSpace(value))
						return
					}
				}
			})
			if len(values) > 0 {
				return values
			}
		}
		return nil
	}
}

// metaContent reads Open-Graph and plain meta tags by property or name.
func metaContent(keys ...string) stringStrategy {
	return func(p *page) string {
		for _, key := range keys {
			selector := `meta[property="` + key + `"], meta[name="` + key + `"]`
			if content, ok := p.doc.Find(selector).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
				return strings.TrimSpace(content)
			}
		}
		return ""
	}
}

func metaImages(keys ...string) listStrategy {
	return func(p *page) []string {
		for _, key := range keys {
			var values []string
			selector := `meta[property="` + key + `"], meta[name="` + key + `"]`
			p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
				if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
					values = append(values, strings.TrimSpace(content))
				}
			})
			if len(values) > 0 {
				return values
			}
		}
		return nil
	}
}
