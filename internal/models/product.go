package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies the source marketplace of an extracted product.
type Platform string

const (
	PlatformAliExpress Platform = "ALIEXPRESS"
	PlatformAmazon     Platform = "AMAZON"
	PlatformAlibaba    Platform = "ALIBABA"
	PlatformCJ         Platform = "CJ"
	PlatformGeneric    Platform = "GENERIC"
)

// Label returns the human-readable marketplace name used in placeholders.
func (p Platform) Label() string {
	switch p {
	case PlatformAliExpress:
		return "AliExpress"
	case PlatformAmazon:
		return "Amazon"
	case PlatformAlibaba:
		return "Alibaba"
	case PlatformCJ:
		return "CJ Dropshipping"
	default:
		return "Sitio Externo"
	}
}

// DefaultName is the placeholder title used when extraction yields nothing.
// The review flagger treats a record carrying this name as incomplete.
func (p Platform) DefaultName() string {
	return "Producto Importado de " + p.Label()
}

// DefaultShippingEstimate is the platform fallback when no shipping data
// could be extracted.
func (p Platform) DefaultShippingEstimate() string {
	switch p {
	case PlatformAliExpress:
		return "15-30 días hábiles"
	case PlatformAmazon:
		return "10-20 días hábiles"
	case PlatformAlibaba:
		return "20-40 días hábiles"
	case PlatformCJ:
		return "8-15 días hábiles"
	default:
		return "15-30 días hábiles"
	}
}

// MaxImages is the per-platform cap applied by the image normalizer.
func (p Platform) MaxImages() int {
	switch p {
	case PlatformAmazon, PlatformAlibaba:
		return 20
	default:
		return 10
	}
}

// PriceTier is one row of a wholesale ladder-price table.
type PriceTier struct {
	MinQuantity int             `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// VariantValue is a single selectable value of a product variant axis.
type VariantValue struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Variant is one variant axis (e.g. Color, Size) with its values.
type Variant struct {
	Name   string         `json:"name"`
	Values []VariantValue `json:"values"`
}

// CanonicalProduct is the pipeline's sole output type: a normalized product
// record independent of the source platform. It is created fresh per
// extraction call and owned by the caller; the pipeline never retains it.
type CanonicalProduct struct {
	ExternalID        *string           `json:"external_id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Price             decimal.Decimal   `json:"price"`
	Currency          string            `json:"currency,omitempty"`
	PriceTiers        []PriceTier       `json:"price_tiers,omitempty"`
	Images            []string          `json:"images"`
	Variants          []Variant         `json:"variants,omitempty"`
	Specifications    map[string]string `json:"specifications,omitempty"`
	ShippingEstimate  string            `json:"shipping_estimate"`
	Platform          Platform          `json:"platform"`
	SourceURL         string            `json:"source_url"`
	NeedsManualReview bool              `json:"needs_manual_review"`
	ReviewReasons     []string          `json:"review_reasons,omitempty"`
	Diagnostics       map[string]any    `json:"diagnostics,omitempty"`
}

// NewCanonicalProduct returns a record pre-filled with the platform's safe
// defaults. Extraction overwrites whatever it manages to resolve.
func NewCanonicalProduct(platform Platform, sourceURL string) *CanonicalProduct {
	return &CanonicalProduct{
		Name:             platform.DefaultName(),
		Price:            decimal.Zero,
		Images:           make([]string, 0),
		Specifications:   make(map[string]string),
		ShippingEstimate: platform.DefaultShippingEstimate(),
		Platform:         platform,
		SourceURL:        sourceURL,
		Diagnostics: map[string]any{
			"extracted_at": time.Now().Format(time.RFC3339),
		},
	}
}

// StripDiagnostics removes the opaque debug payload before the record
// leaves the pipeline in production mode.
func (p *CanonicalProduct) StripDiagnostics() {
	p.Diagnostics = nil
}
