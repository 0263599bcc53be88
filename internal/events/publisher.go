package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dropflow/product-extractor/internal/models"
)

type EventType string

const (
	// EventTypeProductExtracted is published after every completed
	// extraction, degraded or not.
	EventTypeProductExtracted EventType = "PRODUCT_EXTRACTED"
	// EventTypeProductImported is published when the importer persists a
	// catalog product.
	EventTypeProductImported EventType = "PRODUCT_IMPORTED"
)

// ProductExtractedPayload is the event body for PRODUCT_EXTRACTED.
type ProductExtractedPayload struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Timestamp     time.Time `json:"timestamp"`
	SourceURL     string    `json:"source_url"`
	Platform      string    `json:"platform"`
	ExternalID    *string   `json:"external_id,omitempty"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	ImageCount    int       `json:"image_count"`
	NeedsReview   bool      `json:"needs_review"`
	ReviewReasons []string  `json:"review_reasons,omitempty"`
}

// RedisClient is the subset of go-redis the publisher needs; tests
// provide a fake.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher emits pipeline lifecycle events onto a Redis stream so the
// admin subsystem can track bulk imports without polling the API.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: slog.Default().With("component", "event_publisher"),
	}
}

// PublishExtracted emits a PRODUCT_EXTRACTED event for rec. Publishing is
// best-effort from the pipeline's point of view: the caller may log and
// ignore the error without affecting the extraction result.
func (p *Publisher) PublishExtracted(ctx context.Context, rec *models.CanonicalProduct) error {
	payload := &ProductExtractedPayload{
		EventID:       uuid.New().String(),
		EventType:     string(EventTypeProductExtracted),
		Timestamp:     time.Now(),
		SourceURL:     rec.SourceURL,
		Platform:      string(rec.Platform),
		ExternalID:    rec.ExternalID,
		Name:          rec.Name,
		Price:         rec.Price.String(),
		ImageCount:    len(rec.Images),
		NeedsReview:   rec.NeedsManualReview,
		ReviewReasons: rec.ReviewReasons,
	}
	return p.publish(ctx, string(EventTypeProductExtracted), payload.EventID, payload)
}

// ImportedPayload is the event body for PRODUCT_IMPORTED.
type ImportedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID string    `json:"product_id"`
	SourceURL string    `json:"source_url"`
	Status    string    `json:"status"`
}

func (p *Publisher) PublishImported(ctx context.Context, productID, sourceURL, status string) error {
	payload := &ImportedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeProductImported),
		Timestamp: time.Now(),
		ProductID: productID,
		SourceURL: sourceURL,
		Status:    status,
	}
	return p.publish(ctx, string(EventTypeProductImported), payload.EventID, payload)
}

func (p *Publisher) publish(ctx context.Context, eventType, eventID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": eventType,
			"event_id":   eventID,
			"payload":    string(data),
		},
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published", "type", eventType, "event_id", eventID, "stream", p.stream)
	return nil
}
