package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dropflow/product-extractor/internal/database"
	"github.com/dropflow/product-extractor/internal/extractor"
	"github.com/dropflow/product-extractor/internal/importer"
	"github.com/dropflow/product-extractor/internal/models"
)

// ExtractorService is the pipeline surface the handlers expose.
type ExtractorService interface {
	ExtractProduct(ctx context.Context, url string) (*models.CanonicalProduct, error)
	ExtractProductRendered(ctx context.Context, url string) (*models.CanonicalProduct, error)
}

// ImporterService persists extracted records into the catalog.
type ImporterService interface {
	Import(ctx context.Context, rec *models.CanonicalProduct, opts importer.Options) (*database.CatalogProduct, error)
}

// EventPublisher announces completed extractions. Publishing is
// best-effort; a failed publish never fails the request.
type EventPublisher interface {
	PublishExtracted(ctx context.Context, rec *models.CanonicalProduct) error
}

type Handlers struct {
	extractor ExtractorService
	importer  ImporterService
	publisher EventPublisher
	logger    *slog.Logger
}

func NewHandlers(ext ExtractorService, imp ImporterService, publisher EventPublisher, logger *slog.Logger) *Handlers {
	return &Handlers{
		extractor: ext,
		importer:  imp,
		publisher: publisher,
		logger:    logger,
	}
}

// ExtractRequest asks for a single product page extraction.
type ExtractRequest struct {
	URL      string `json:"url"`
	Rendered bool   `json:"rendered"`
}

// Extract handles POST /api/v1/extract. Degraded extractions still
// return 200; the review flag is the only failure channel besides a
// malformed URL.
func (h *Handlers) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	var rec *models.CanonicalProduct
	var err error
	if req.Rendered {
		rec, err = h.extractor.ExtractProductRendered(r.Context(), req.URL)
	} else {
		rec, err = h.extractor.ExtractProduct(r.Context(), req.URL)
	}
	if err != nil {
		if errors.Is(err, extractor.ErrInvalidURL) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("extraction failed", "url", req.URL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	h.publishExtracted(r.Context(), rec)
	h.respondJSON(w, http.StatusOK, rec)
}

func (h *Handlers) publishExtracted(ctx context.Context, rec *models.CanonicalProduct) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishExtracted(ctx, rec); err != nil {
		h.logger.Warn("failed to publish extraction event", "url", rec.SourceURL, "error", err)
	}
}

// ImportRequest extracts a URL and imports the result into the catalog.
type ImportRequest struct {
	URL                 string  `json:"url"`
	CategoryID          string  `json:"category_id"`
	SupplierID          string  `json:"supplier_id"`
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
	AutoCalculatePrice  bool    `json:"auto_calculate_price"`
}

type ImportResponse struct {
	ProductID     string   `json:"product_id"`
	Status        string   `json:"status"`
	NeedsReview   bool     `json:"needs_review"`
	ReviewReasons []string `json:"review_reasons,omitempty"`
}

// Import handles POST /api/v1/import.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	rec, err := h.extractor.ExtractProduct(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, extractor.ErrInvalidURL) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("extraction failed", "url", req.URL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	h.publishExtracted(r.Context(), rec)

	product, err := h.importer.Import(r.Context(), rec, importer.Options{
		CategoryID:          req.CategoryID,
		SupplierID:          req.SupplierID,
		ProfitMarginPercent: decimal.NewFromFloat(req.ProfitMarginPercent),
		AutoCalculatePrice:  req.AutoCalculatePrice,
	})
	if err != nil {
		h.logger.Error("import failed", "url", req.URL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "import failed")
		return
	}

	h.respondJSON(w, http.StatusCreated, ImportResponse{
		ProductID:     product.ID.String(),
		Status:        product.Status,
		NeedsReview:   rec.NeedsManualReview,
		ReviewReasons: rec.ReviewReasons,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
