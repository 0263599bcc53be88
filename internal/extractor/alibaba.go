package extractor

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropflow/product-extractor/internal/models"
	"github.com/dropflow/product-extractor/internal/normalize"
	"github.com/dropflow/product-extractor/internal/parse"
)

// alibabaExtractor handles wholesale listings: the distinguishing feature
// is ladder pricing, a per-quantity-tier price table. The representative
// unit price is the tier with the lowest minimum quantity.
type alibabaExtractor struct {
	logger *slog.Logger
}

func newAlibabaExtractor(logger *slog.Logger) *alibabaExtractor {
	return &alibabaExtractor{logger: logger.With("extractor", "alibaba")}
}

const alibabaReadyExpr = `typeof window.detailData !== 'undefined'`

var (
	alibabaTitlePaths = []string{
		"globalData.product.subject",
		"globalData.product.subjectTrans",
		"product.subject",
	}
	alibabaDescriptionPaths = []string{
		"globalData.product.description",
		"product.description",
	}
	alibabaLadderPaths = []string{
		"globalData.product.price.productLadderPrices",
		"globalData.product.productLadderPrices",
		"product.productLadderPrices",
	}
	alibabaImagePaths = []string{
		"globalData.product.mediaItems",
		"product.mediaItems",
	}
	alibabaSpecPaths = []string{
		"globalData.product.productBasicProperties",
		"product.productBasicProperties",
	}
)

func (e *alibabaExtractor) extract(p *page, rec *models.CanonicalProduct) {
	if marker := p.loadPayload(e.logger, "window.detailData", "detailData"); marker != "" {
		rec.Diagnostics["payload_marker"] = marker
	}

	if title := firstString(p,
		payloadString(alibabaTitlePaths...),
		selectorText("h1.product-title", ".product-title h1", "h1"),
		metaContent("og:title"),
		func(p *page) string { return p.doc.Find("title").First().Text() },
	); title != "" {
		rec.Name = title
	}

	rec.PriceTiers = e.extractLadder(p)
	if len(rec.PriceTiers) > 0 {
		rec.Price = normalize.RepresentativePrice(rec.PriceTiers)
	} else {
		priceText := firstString(p,
			selectorText(".price-item .price", ".ma-ref-price", ".price"),
			metaContent("og:price:amount", "product:price:amount"),
		)
		rec.Price = normalize.Price(priceText)
		if currency := normalize.Currency(priceText); currency != "" {
			rec.Currency = currency
		}
	}

	rec.Images = normalize.Images(firstList(p,
		e.payloadImages,
		selectorImages(".detail-gallery img", ".main-image img", `[class*="gallery"] img`),
		metaImages("og:image"),
	), rec.Platform)

	if description := firstString(p,
		payloadString(alibabaDescriptionPaths...),
		selectorText(".do-entry-summary", "#description"),
		metaContent("og:description", "description"),
	); description != "" {
		rec.Description = description
	}

	rec.Variants = e.extractVariants(p)

	if rawSpecs, ok := parse.LookupSlice(p.payload, alibabaSpecPaths...); ok {
		rec.Specifications = normalize.Specifications(specPairsFromProps(rawSpecs))
	} else if specs := e.domSpecs(p); len(specs) > 0 {
		rec.Specifications = specs
	}
}

// extractLadder collects {minQuantity, price} rows, payload first, DOM
// table fallback. Source order is preserved.
func (e *alibabaExtractor) extractLadder(p *page) []models.PriceTier {
	if rawTiers, ok := parse.LookupSlice(p.payload, alibabaLadderPaths...); ok {
		tiers := make([]models.PriceTier, 0, len(rawTiers))
		for _, entry := range rawTiers {
			tier, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			qtyText, _ := parse.LookupString(tier, "min", "minQuantity", "beginAmount")
			priceText, _ := parse.LookupString(tier, "price", "dollarPrice", "priceValue")
			price := normalize.Price(priceText)
			if price.IsZero() {
				continue
			}
			tiers = append(tiers, models.PriceTier{
				MinQuantity: normalize.TierQuantity(qtyText),
				Price:       price,
			})
		}
		if len(tiers) > 0 {
			return tiers
		}
	}

	rowSelectors := []string{
		".ladder-price .ladder-item",
		".ma-ladder-price .ma-ladder-price-item",
		".price-list .price-item",
	}
	for _, selector := range rowSelectors {
		var tiers []models.PriceTier
		p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			qtyText := strings.TrimSpace(s.Find(".quantity, .ma-quantity-range, .quality").First().Text())
			priceText := strings.TrimSpace(s.Find(".price, .ma-ladder-price-value").First().Text())
			if qtyText == "" && priceText == "" {
				// Some layouts collapse both into the row text.
				parts := strings.Fields(s.Text())
				if len(parts) >= 2 {
					qtyText = parts[0]
					priceText = parts[len(parts)-1]
				}
			}
			price := normalize.Price(priceText)
			if price.IsZero() {
				return
			}
			tiers = append(tiers, models.PriceTier{
				MinQuantity: normalize.TierQuantity(qtyText),
				Price:       price,
			})
		})
		if len(tiers) > 0 {
			return tiers
		}
	}

	return nil
}

// payloadImages walks mediaItems, which mixes images and videos; only
// image entries carry an imageUrl object.
func (e *alibabaExtractor) payloadImages(p *page) []string {
	items, ok := parse.LookupSlice(p.payload, alibabaImagePaths...)
	if !ok {
		return nil
	}

	var urls []string
	for _, entry := range items {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if kind, _ := parse.LookupString(item, "type"); kind != "" && kind != "image" {
			continue
		}
		if u, ok := parse.LookupString(item, "imageUrl.big", "imageUrl.normal", "imageUrl"); ok {
			urls = append(urls, u)
		}
	}
	return urls
}

// extractVariants maps .sku-item elements. Axis names come from the
// surrounding .sku-prop block when present; loose items are grouped under
// a single synthetic axis.
func (e *alibabaExtractor) extractVariants(p *page) []models.Variant {
	var variants []models.Variant

	p.doc.Find(".sku-prop").Each(func(_ int, block *goquery.Selection) {
		name := strings.TrimSpace(block.Find(".sku-prop-name").First().Text())
		if name == "" {
			name = "Opción"
		}
		if values := skuItemValues(block); len(values) > 0 {
			variants = append(variants, normalize.Variant(name, values))
		}
	})

	if len(variants) == 0 {
		if values := skuItemValues(p.doc.Selection); len(values) > 0 {
			variants = append(variants, normalize.Variant("Opción", values))
		}
	}

	return variants
}

func skuItemValues(scope *goquery.Selection) []models.VariantValue {
	var values []models.VariantValue
	scope.Find(".sku-item").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("title", "")
		if name == "" {
			name = strings.TrimSpace(s.Text())
		}
		if name == "" {
			name = strings.TrimSpace(s.Find("img").AttrOr("alt", ""))
		}
		if name == "" {
			return
		}
		values = append(values, models.VariantValue{
			ID:          s.AttrOr("data-sku-id", ""),
			DisplayName: name,
			ImageURL:    s.Find("img").AttrOr("src", ""),
		})
	})
	return values
}

func (e *alibabaExtractor) domSpecs(p *page) map[string]string {
	var pairs []normalize.SpecPair

	p.doc.Find(".do-entry-item").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find(".do-entry-item-key, .attr-name").First().Text())
		value := strings.TrimSpace(s.Find(".do-entry-item-val, .attr-value").First().Text())
		if name != "" && value != "" {
			pairs = append(pairs, normalize.SpecPair{Name: name, Value: value})
		}
	})

	p.doc.Find(".attribute-list tr, .product-props tr").Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td, th")
		if cells.Length() >= 2 {
			pairs = append(pairs, normalize.SpecPair{
				Name:  strings.TrimSpace(cells.First().Text()),
				Value: strings.TrimSpace(cells.Last().Text()),
			})
		}
	})

	return normalize.Specifications(pairs)
}
