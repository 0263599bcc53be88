package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	CatalogStatusActive        = "active"
	CatalogStatusPendingReview = "pending_review"
)

// ErrNotFound is returned when a lookup matches no catalog product.
var ErrNotFound = errors.New("catalog product not found")

// CatalogProduct is the persistable shape the importer derives from a
// CanonicalProduct plus the store operator's options.
type CatalogProduct struct {
	ID               uuid.UUID       `json:"id"`
	ExternalID       *string         `json:"external_id"`
	CategoryID       string          `json:"category_id"`
	SupplierID       string          `json:"supplier_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	SupplierPrice    decimal.Decimal `json:"supplier_price"`
	SellPrice        decimal.Decimal `json:"sell_price"`
	Currency         string          `json:"currency"`
	Images           []string        `json:"images"`
	VariantsJSON     []byte          `json:"-"`
	SpecsJSON        []byte          `json:"-"`
	ShippingEstimate string          `json:"shipping_estimate"`
	Platform         string          `json:"platform"`
	SourceURL        string          `json:"source_url"`
	Status           string          `json:"status"`
	ReviewReasons    []string        `json:"review_reasons,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CatalogStore persists imported products. The pipeline itself never
// touches it; only the importer collaborator does.
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *CatalogProduct) error
	GetProductBySourceURL(ctx context.Context, sourceURL string) (*CatalogProduct, error)
}

type CatalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product *CatalogProduct) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}

	reviewReasons, err := json.Marshal(product.ReviewReasons)
	if err != nil {
		return fmt.Errorf("failed to marshal review reasons: %w", err)
	}

	query := `
		INSERT INTO catalog_products (
			id, external_id, category_id, supplier_id, name, description,
			supplier_price, sell_price, currency, images, variants,
			specifications, shipping_estimate, platform, source_url,
			status, review_reasons, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18
		)`

	_, err = r.db.Exec(ctx, query,
		product.ID,
		product.ExternalID,
		product.CategoryID,
		product.SupplierID,
		product.Name,
		product.Description,
		product.SupplierPrice,
		product.SellPrice,
		product.Currency,
		product.Images,
		product.VariantsJSON,
		product.SpecsJSON,
		product.ShippingEstimate,
		product.Platform,
		product.SourceURL,
		product.Status,
		reviewReasons,
		product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert catalog product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetProductBySourceURL(ctx context.Context, sourceURL string) (*CatalogProduct, error) {
	query := `
		SELECT id, external_id, category_id, supplier_id, name, description,
		       supplier_price, sell_price, currency, images, shipping_estimate,
		       platform, source_url, status, created_at
		FROM catalog_products
		WHERE source_url = $1`

	var product CatalogProduct
	err := r.db.QueryRow(ctx, query, sourceURL).Scan(
		&product.ID,
		&product.ExternalID,
		&product.CategoryID,
		&product.SupplierID,
		&product.Name,
		&product.Description,
		&product.SupplierPrice,
		&product.SellPrice,
		&product.Currency,
		&product.Images,
		&product.ShippingEstimate,
		&product.Platform,
		&product.SourceURL,
		&product.Status,
		&product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get catalog product: %w", err)
	}
	return &product, nil
}
