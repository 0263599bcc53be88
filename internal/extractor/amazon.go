package extractor

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropflow/product-extractor/internal/models"
	"github.com/dropflow/product-extractor/internal/normalize"
)

// amazonExtractor works mostly off the DOM: Amazon does not expose a
// single product payload object, but it does inline the gallery JSON
// (colorImages) whose hiRes entries are the best image source.
type amazonExtractor struct {
	logger *slog.Logger
}

func newAmazonExtractor(logger *slog.Logger) *amazonExtractor {
	return &amazonExtractor{logger: logger.With("extractor", "amazon")}
}

const amazonReadyExpr = `document.getElementById('productTitle') !== null`

var (
	amazonHiResPattern = regexp.MustCompile(`"hiRes":"(https?://[^"]+)"`)
	amazonLargePattern = regexp.MustCompile(`"large":"(https?://[^"]+)"`)
)

var amazonPriceSelectors = []string{
	"#corePrice_feature_div .a-offscreen",
	".a-price .a-offscreen",
	"span.a-price.a-text-price.a-size-medium.apexPriceToPay",
	"#priceblock_dealprice",
	"#priceblock_ourprice",
	".a-price-range",
	".a-price-whole",
}

func (e *amazonExtractor) extract(p *page, rec *models.CanonicalProduct) {
	if title := firstString(p,
		selectorText("#productTitle", "#title"),
		metaContent("og:title", "title"),
		func(p *page) string { return p.doc.Find("title").First().Text() },
	); title != "" {
		rec.Name = title
	}

	priceText := firstString(p,
		selectorText(amazonPriceSelectors...),
		metaContent("og:price:amount", "product:price:amount"),
	)
	rec.Price = normalize.Price(priceText)
	if currency := normalize.Currency(priceText); currency != "" {
		rec.Currency = currency
	}

	rec.Images = normalize.Images(firstList(p,
		e.galleryImages,
		selectorImages("#altImages ul li img"),
		func(p *page) []string {
			for _, attr := range []string{"data-old-hires", "src"} {
				if src, ok := p.doc.Find("#landingImage").Attr(attr); ok && src != "" {
					return []string{src}
				}
			}
			return nil
		},
		metaImages("og:image"),
	), rec.Platform)

	if description := firstString(p,
		selectorText("#productDescription"),
		e.featureBullets,
		metaContent("og:description", "description"),
	); description != "" {
		rec.Description = description
	}

	rec.Variants = e.extractVariants(p)

	if specs := e.extractSpecs(p); len(specs) > 0 {
		rec.Specifications = specs
	}
}

// galleryImages pulls hiRes (falling back to large) URLs out of the
// inline colorImages gallery script.
func (e *amazonExtractor) galleryImages(p *page) []string {
	var urls []string
	p.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if !strings.Contains(body, "colorImages") && !strings.Contains(body, "imageGalleryData") {
			return
		}
		for _, match := range amazonHiResPattern.FindAllStringSubmatch(body, -1) {
			urls = append(urls, match[1])
		}
		if len(urls) == 0 {
			for _, match := range amazonLargePattern.FindAllStringSubmatch(body, -1) {
				urls = append(urls, match[1])
			}
		}
	})
	return urls
}

func (e *amazonExtractor) featureBullets(p *page) string {
	var bullets []string
	p.doc.Find("#feature-bullets li").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			bullets = append(bullets, text)
		}
	})
	return strings.Join(bullets, "\n")
}

// extractVariants maps the color swatch list and the size dropdown into
// canonical variant axes.
func (e *amazonExtractor) extractVariants(p *page) []models.Variant {
	var variants []models.Variant

	var colors []models.VariantValue
	p.doc.Find("#variation_color_name li").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("title")
		if !ok || name == "" {
			name = strings.TrimSpace(s.Find("img").AttrOr("alt", ""))
		}
		name = strings.TrimPrefix(name, "Click to select ")
		if name == "" {
			return
		}
		colors = append(colors, models.VariantValue{
			ID:          s.AttrOr("data-defaultasin", ""),
			DisplayName: name,
			ImageURL:    s.Find("img").AttrOr("src", ""),
		})
	})
	if len(colors) > 0 {
		variants = append(variants, normalize.Variant("Color", colors))
	}

	var sizes []models.VariantValue
	p.doc.Find("#variation_size_name option, #native_dropdown_selected_size_name option").Each(func(_ int, s *goquery.Selection) {
		value := s.AttrOr("value", "")
		name := strings.TrimSpace(s.Text())
		if value == "" || value == "-1" || name == "" || strings.HasPrefix(name, "Select") {
			return
		}
		sizes = append(sizes, models.VariantValue{ID: value, DisplayName: name})
	})
	if len(sizes) > 0 {
		variants = append(variants, normalize.Variant("Size", sizes))
	}

	return variants
}

func (e *amazonExtractor) extractSpecs(p *page) map[string]string {
	var pairs []normalize.SpecPair

	p.doc.Find("#productDetails_techSpec_section_1 tr, #productDetails_detailBullets_sections1 tr, .prodDetTable tr").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find("th").First().Text())
		value := strings.TrimSpace(s.Find("td").First().Text())
		if name != "" && value != "" {
			pairs = append(pairs, normalize.SpecPair{Name: name, Value: value})
		}
	})

	// Detail bullets render as "Name : Value" inside a single list item.
	p.doc.Find("#detailBullets_feature_div li").Each(func(_ int, s *goquery.Selection) {
		parts := strings.SplitN(s.Text(), ":", 2)
		if len(parts) == 2 {
			pairs = append(pairs, normalize.SpecPair{
				Name:  strings.Join(strings.Fields(parts[0]), " "),
				Value: strings.Join(strings.Fields(parts[1]), " "),
			})
		}
	})

	return normalize.Specifications(pairs)
}
