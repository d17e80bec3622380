package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	pkgkafka "github.com/utafrali/ReviewModerationGo/pkg/kafka"
)

// Kafka topic constants for review moderation events.
const (
	TopicReviewInserted = "moderation.review.inserted"
)

// Aggregate type constant.
const AggregateTypeReview = "review"

// Source identifier for events originating from the moderation service.
const SourceModerationService = "moderation-service"

// ReviewInsertedData is the payload for a review.inserted event: the record
// image as of insert. The rating is carried as a string; consumers parse it
// and fall back to a neutral default when unparsable.
type ReviewInsertedData struct {
	ReviewID             string    `json:"review_id"`
	UserID               string    `json:"user_id"`
	ProductID            string    `json:"product_id"`
	OriginalReviewText   *string   `json:"original_review_text,omitempty"`
	OriginalSummary      *string   `json:"original_summary,omitempty"`
	OriginalTextLocation *string   `json:"original_text_location,omitempty"`
	PreprocessedLocation string    `json:"preprocessed_location"`
	OverallRating        string    `json:"overall_rating"`
	ReviewTime           time.Time `json:"review_time"`
	ProductCategory      string    `json:"product_category"`
	ReviewerName         string    `json:"reviewer_name,omitempty"`
}

// Record rebuilds the review record image carried by the event.
func (d *ReviewInsertedData) Record() *domain.ReviewRecord {
	return &domain.ReviewRecord{
		ReviewID:             d.ReviewID,
		UserID:               d.UserID,
		ProductID:            d.ProductID,
		OriginalReviewText:   d.OriginalReviewText,
		OriginalSummary:      d.OriginalSummary,
		OriginalTextLocation: d.OriginalTextLocation,
		PreprocessedLocation: d.PreprocessedLocation,
		ReviewTime:           d.ReviewTime,
		ProductCategory:      d.ProductCategory,
		ReviewerName:         d.ReviewerName,
	}
}

// Producer publishes review moderation events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the moderation service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewInserted publishes a review.inserted event with the record image.
func (p *Producer) PublishReviewInserted(ctx context.Context, record *domain.ReviewRecord) error {
	data := ReviewInsertedData{
		ReviewID:             record.ReviewID,
		UserID:               record.UserID,
		ProductID:            record.ProductID,
		OriginalReviewText:   record.OriginalReviewText,
		OriginalSummary:      record.OriginalSummary,
		OriginalTextLocation: record.OriginalTextLocation,
		PreprocessedLocation: record.PreprocessedLocation,
		OverallRating:        strconv.FormatFloat(record.OverallRating, 'f', -1, 64),
		ReviewTime:           record.ReviewTime,
		ProductCategory:      record.ProductCategory,
		ReviewerName:         record.ReviewerName,
	}

	event, err := pkgkafka.NewEvent(TopicReviewInserted, record.ReviewID, AggregateTypeReview, SourceModerationService, data)
	if err != nil {
		return fmt.Errorf("create review.inserted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewInserted, event); err != nil {
		return fmt.Errorf("publish review.inserted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.inserted event",
		slog.String("review_id", record.ReviewID),
		slog.String("user_id", record.UserID),
	)

	return nil
}
