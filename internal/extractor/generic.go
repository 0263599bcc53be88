package extractor

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropflow/product-extractor/internal/models"
	"github.com/dropflow/product-extractor/internal/normalize"
	"github.com/dropflow/product-extractor/internal/parse"
)

// genericExtractor serves unknown hosts and acts as the ultimate fallback
// vocabulary: JSON-LD Product blocks, Open-Graph tags, itemprop microdata
// and finally the bare <title>/<meta description>.
type genericExtractor struct {
	logger *slog.Logger
}

func newGenericExtractor(logger *slog.Logger) *genericExtractor {
	return &genericExtractor{logger: logger.With("extractor", "generic")}
}

const genericReadyExpr = `document.readyState === 'complete'`

func (e *genericExtractor) extract(p *page, rec *models.CanonicalProduct) {
	product := e.findJSONLDProduct(p)

	if title := firstString(p,
		func(*page) string { value, _ := parse.LookupString(product, "name"); return value },
		metaContent("og:title", "twitter:title"),
		selectorText(`[itemprop="name"]`),
		func(p *page) string { return p.doc.Find("title").First().Text() },
	); title != "" {
		rec.Name = title
	}

	priceText := firstString(p,
		func(*page) string {
			value, _ := parse.LookupString(product, "offers.price", "offers.lowPrice", "offers.0.price", "offers.0.lowPrice")
			return value
		},
		metaContent("og:price:amount", "product:price:amount"),
		func(p *page) string {
			el := p.doc.Find(`[itemprop="price"]`).First()
			if content, ok := el.Attr("content"); ok && content != "" {
				return content
			}
			return el.Text()
		},
	)
	rec.Price = normalize.Price(priceText)
	if currency, ok := parse.LookupString(product, "offers.priceCurrency", "offers.0.priceCurrency"); ok {
		rec.Currency = currency
	} else if currency := firstString(p, metaContent("og:price:currency", "product:price:currency")); currency != "" {
		rec.Currency = currency
	} else if symbol := normalize.Currency(priceText); symbol != "" {
		rec.Currency = symbol
	}

	rec.Images = normalize.Images(firstList(p,
		func(*page) []string { return jsonLDImages(product) },
		metaImages("og:image", "twitter:image"),
		selectorImages(`[itemprop="image"]`),
	), rec.Platform)

	if description := firstString(p,
		func(*page) string { value, _ := parse.LookupString(product, "description"); return value },
		metaContent("og:description", "description"),
		selectorText(`[itemprop="description"]`),
	); description != "" {
		rec.Description = description
	}

	if rec.ExternalID == nil {
		if sku, ok := parse.LookupString(product, "sku", "productID", "mpn"); ok {
			rec.ExternalID = &sku
		}
	}
}

// findJSONLDProduct scans ld+json blocks for the first object typed
// Product, looking inside arrays and @graph containers. Strict JSON only:
// JSON-LD is specified as JSON, so no lenient pass here.
func (e *genericExtractor) findJSONLDProduct(p *page) map[string]any {
	var product map[string]any
	p.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var doc any
		if err := json.Unmarshal([]byte(s.Text()), &doc); err != nil {
			e.logger.Debug("skipping malformed ld+json block", "error", err)
			return true
		}
		if found := findProductNode(doc); found != nil {
			product = found
			return false
		}
		return true
	})
	return product
}

func findProductNode(doc any) map[string]any {
	switch node := doc.(type) {
	case map[string]any:
		if isProductType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"].([]any); ok {
			return findProductNode(graph)
		}
	case []any:
		for _, entry := range node {
			if found := findProductNode(entry); found != nil {
				return found
			}
		}
	}
	return nil
}

func isProductType(value any) bool {
	switch t := value.(type) {
	case string:
		return strings.EqualFold(t, "Product")
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

// jsonLDImages accepts the three shapes "image" ships in: a single URL, a
// URL list, or ImageObject entries.
func jsonLDImages(product map[string]any) []string {
	if product == nil {
		return nil
	}

	var urls []string
	switch image := product["image"].(type) {
	case string:
		urls = append(urls, image)
	case []any:
		for _, entry := range image {
			switch img := entry.(type) {
			case string:
				urls = append(urls, img)
			case map[string]any:
				if u, ok := parse.LookupString(img, "url", "contentUrl"); ok {
					urls = append(urls, u)
				}
			}
		}
	case map[string]any:
		if u, ok := parse.LookupString(image, "url", "contentUrl"); ok {
			urls = append(urls, u)
		}
	}
	return urls
}
