// Package importer is the downstream collaborator that turns a
// CanonicalProduct plus operator options into a persistable catalog
// product. Pricing derivation lives here, not in the pipeline.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dropflow/product-extractor/internal/database"
	"github.com/dropflow/product-extractor/internal/models"
)

// Options are supplied by the store operator per import.
type Options struct {
	CategoryID          string          `json:"category_id"`
	SupplierID          string          `json:"supplier_id"`
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`
	AutoCalculatePrice  bool            `json:"auto_calculate_price"`
}

// EventPublisher decouples the importer from the concrete Redis stream.
type EventPublisher interface {
	PublishImported(ctx context.Context, productID, sourceURL, status string) error
}

type Importer struct {
	store     database.CatalogStore
	publisher EventPublisher
	logger    *slog.Logger
}

func New(store database.CatalogStore, publisher EventPublisher) *Importer {
	return &Importer{
		store:     store,
		publisher: publisher,
		logger:    slog.Default().With("component", "importer"),
	}
}

// Import persists rec as a catalog product. Review-flagged records are
// stored as pending_review rather than rejected, keeping bulk imports
// non-blocking.
func (i *Importer) Import(ctx context.Context, rec *models.CanonicalProduct, opts Options) (*database.CatalogProduct, error) {
	variantsJSON, err := json.Marshal(rec.Variants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variants: %w", err)
	}
	specsJSON, err := json.Marshal(rec.Specifications)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal specifications: %w", err)
	}

	product := &database.CatalogProduct{
		ExternalID:       rec.ExternalID,
		CategoryID:       opts.CategoryID,
		SupplierID:       opts.SupplierID,
		Name:             rec.Name,
		Description:      rec.Description,
		SupplierPrice:    rec.Price,
		SellPrice:        SellPrice(rec.Price, opts),
		Currency:         rec.Currency,
		Images:           rec.Images,
		VariantsJSON:     variantsJSON,
		SpecsJSON:        specsJSON,
		ShippingEstimate: rec.ShippingEstimate,
		Platform:         string(rec.Platform),
		SourceURL:        rec.SourceURL,
		Status:           database.CatalogStatusActive,
		ReviewReasons:    rec.ReviewReasons,
	}
	if rec.NeedsManualReview {
		product.Status = database.CatalogStatusPendingReview
	}

	if err := i.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to persist catalog product: %w", err)
	}

	if i.publisher != nil {
		if err := i.publisher.PublishImported(ctx, product.ID.String(), product.SourceURL, product.Status); err != nil {
			i.logger.Warn("failed to publish import event", "product_id", product.ID, "error", err)
		}
	}

	i.logger.Info("product imported",
		"product_id", product.ID,
		"platform", product.Platform,
		"status", product.Status,
	)
	return product, nil
}

// SellPrice derives the retail price: supplierPrice * (1 + margin/100),
// rounded to cents. Without auto-calculation the supplier price passes
// through unchanged.
func SellPrice(supplierPrice decimal.Decimal, opts Options) decimal.Decimal {
	if !opts.AutoCalculatePrice {
		return supplierPrice
	}
	margin := opts.ProfitMarginPercent.Div(decimal.NewFromInt(100))
	return supplierPrice.Mul(decimal.NewFromInt(1).Add(margin)).Round(2)
}
