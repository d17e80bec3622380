package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	pkgkafka "github.com/utafrali/ReviewModerationGo/pkg/kafka"
)

// Consumer group IDs for the pipeline stages. Each stage consumes the
// review.inserted topic in its own group, so the stages receive every event
// independently and run in no particular order relative to each other.
const (
	GroupProfanityStage = "profanity-stage"
	GroupSentimentStage = "sentiment-stage"
)

// ProfanityChecker runs the profanity stage for one review record image.
type ProfanityChecker interface {
	Check(ctx context.Context, record *domain.ReviewRecord) error
}

// SentimentAnalyzer runs the sentiment stage for one review.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, reviewID, preprocessedLocation, rating string) error
}

// ProfanityHandler routes incoming Kafka events to the profanity stage.
type ProfanityHandler struct {
	service ProfanityChecker
	logger  *slog.Logger
}

// NewProfanityHandler creates the profanity stage event handler.
func NewProfanityHandler(svc ProfanityChecker, logger *slog.Logger) *ProfanityHandler {
	return &ProfanityHandler{
		service: svc,
		logger:  logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ProfanityHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicReviewInserted:
		var data ReviewInsertedData
		if err := event.UnmarshalData(&data); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal review.inserted payload",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			// Malformed payloads never become parsable; do not retry.
			return nil
		}
		return h.service.Check(ctx, data.Record())
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// SentimentHandler routes incoming Kafka events to the sentiment stage.
type SentimentHandler struct {
	service SentimentAnalyzer
	logger  *slog.Logger
}

// NewSentimentHandler creates the sentiment stage event handler.
func NewSentimentHandler(svc SentimentAnalyzer, logger *slog.Logger) *SentimentHandler {
	return &SentimentHandler{
		service: svc,
		logger:  logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *SentimentHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicReviewInserted:
		var data ReviewInsertedData
		if err := event.UnmarshalData(&data); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal review.inserted payload",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		return h.service.Analyze(ctx, data.ReviewID, data.PreprocessedLocation, data.OverallRating)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// NewStageConsumer creates a consumer for one pipeline stage: the handler is
// wrapped with event-id deduplication against the given store, and messages
// that exhaust all retries are published to the DLQ.
func NewStageConsumer(
	brokers []string,
	group string,
	handler pkgkafka.Handler,
	store pkgkafka.IdempotencyStore,
	dlq *pkgkafka.DLQProducer,
	logger *slog.Logger,
) *pkgkafka.Consumer {
	cfg := pkgkafka.ConsumerConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    TopicReviewInserted,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	return pkgkafka.NewConsumer(cfg, pkgkafka.IdempotentHandler(store, handler, logger), logger).WithDLQ(dlq)
}
