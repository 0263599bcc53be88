package extractor

import (
	"log/slog"

	"github.com/dropflow/product-extractor/internal/models"
	"github.com/dropflow/product-extractor/internal/normalize"
	"github.com/dropflow/product-extractor/internal/parse"
)

// aliExpressExtractor reads the window.runParams payload AliExpress
// injects into every product page. The payload has shipped under several
// incompatible schema versions (module-based and component-based); each
// field carries an ordered path list covering the known ones.
type aliExpressExtractor struct {
	logger *slog.Logger
}

func newAliExpressExtractor(logger *slog.Logger) *aliExpressExtractor {
	return &aliExpressExtractor{logger: logger.With("extractor", "aliexpress")}
}

// In-page global whose presence signals the product payload is loaded.
// Shared with the headless-render poll loop.
const aliExpressReadyExpr = `typeof window.runParams !== 'undefined' && window.runParams !== null`

var (
	aliTitlePaths = []string{
		"data.titleModule.subject",
		"titleModule.subject",
		"data.productInfoComponent.subject",
		"productInfoComponent.subject",
	}
	aliPricePaths = []string{
		"data.priceModule.minAmount.value",
		"priceModule.minAmount.value",
		"data.priceModule.minActivityAmount.value",
		"priceModule.minActivityAmount.value",
		"data.priceComponent.origPrice.minAmount.value",
		"priceComponent.origPrice.minAmount.value",
		"data.priceModule.formatedActivityPrice",
		"priceModule.formatedActivityPrice",
		"data.priceModule.formatedPrice",
		"priceModule.formatedPrice",
	}
	aliCurrencyPaths = []string{
		"data.priceModule.minAmount.currency",
		"priceModule.minAmount.currency",
		"data.priceComponent.origPrice.minAmount.currency",
		"data.commonModule.currencyCode",
		"commonModule.currencyCode",
	}
	aliImagePaths = []string{
		"data.imageModule.imagePathList",
		"imageModule.imagePathList",
		"data.imageComponent.imagePathList",
		"imageComponent.imagePathList",
	}
	aliVariantPaths = []string{
		"data.skuModule.productSKUPropertyList",
		"skuModule.productSKUPropertyList",
		"data.skuComponent.productSKUPropertyList",
		"skuComponent.productSKUPropertyList",
	}
	aliSpecPaths = []string{
		"data.specsModule.props",
		"specsModule.props",
		"data.productPropComponent.props",
		"productPropComponent.props",
	}
	aliDescriptionPaths = []string{
		"data.pageModule.description",
		"pageModule.description",
		"data.metaDataModule.description",
		"metaDataModule.description",
	}
)

func (e *aliExpressExtractor) extract(p *page, rec *models.CanonicalProduct) {
	if marker := p.loadPayload(e.logger, "window.runParams", "runParams"); marker != "" {
		rec.Diagnostics["payload_marker"] = marker
	}

	if title := firstString(p,
		payloadString(aliTitlePaths...),
		selectorText("h1.product-title-text", `h1[data-pl="product-title"]`, ".product-title", "h1"),
		metaContent("og:title"),
		func(p *page) string { return p.doc.Find("title").First().Text() },
	); title != "" {
		rec.Name = title
	}

	priceText := firstString(p,
		payloadString(aliPricePaths...),
		selectorText(".product-price-value", ".uniform-banner-box-price", ".product-price-current", `[class*="price--current"]`),
		metaContent("og:price:amount", "product:price:amount"),
	)
	rec.Price = normalize.Price(priceText)
	if currency, ok := parse.LookupString(p.payload, aliCurrencyPaths...); ok {
		rec.Currency = currency
	} else if symbol := normalize.Currency(priceText); symbol != "" {
		rec.Currency = symbol
	}

	rec.Images = normalize.Images(firstList(p,
		payloadStrings(aliImagePaths...),
		selectorImages(".images-view-item img", `[class*="slider--img"] img`, "img.magnifier-image"),
		metaImages("og:image"),
	), rec.Platform)

	if description := firstString(p,
		payloadString(aliDescriptionPaths...),
		selectorText(".product-description", "#product-description"),
		metaContent("og:description", "description"),
	); description != "" {
		rec.Description = description
	}

	if rawProps, ok := parse.LookupSlice(p.payload, aliVariantPaths...); ok {
		rec.Variants = normalize.VariantsFromSKUProperties(rawProps)
	}

	if rawSpecs, ok := parse.LookupSlice(p.payload, aliSpecPaths...); ok {
		rec.Specifications = normalize.Specifications(specPairsFromProps(rawSpecs))
	}
}

// specPairsFromProps maps the shared {attrName, attrValue} prop-list shape
// used by both AliExpress and Alibaba payloads.
func specPairsFromProps(raw []any) []normalize.SpecPair {
	pairs := make([]normalize.SpecPair, 0, len(raw))
	for _, entry := range raw {
		prop, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, _ := parse.LookupString(prop, "attrName", "name")
		value, _ := parse.LookupString(prop, "attrValue", "value")
		if name != "" && value != "" {
			pairs = append(pairs, normalize.SpecPair{Name: name, Value: value})
		}
	}
	return pairs
}
