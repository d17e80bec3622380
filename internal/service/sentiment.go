package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	"github.com/utafrali/ReviewModerationGo/internal/repository"
	"github.com/utafrali/ReviewModerationGo/internal/sentiment"
	"github.com/utafrali/ReviewModerationGo/internal/storage"
)

// SentimentService implements the sentiment stage: it dereferences the
// preprocessed document, scores the canonicalized text, and overwrites the
// record's sentiment label. The overwrite is a pure idempotent update with no
// ordering dependency on the profanity stage.
type SentimentService struct {
	reviews repository.ReviewRepository
	blobs   storage.BlobStore
	scorer  sentiment.Scorer
	logger  *slog.Logger
}

// NewSentimentService creates the sentiment stage service.
func NewSentimentService(
	reviews repository.ReviewRepository,
	blobs storage.BlobStore,
	scorer sentiment.Scorer,
	logger *slog.Logger,
) *SentimentService {
	return &SentimentService{
		reviews: reviews,
		blobs:   blobs,
		scorer:  scorer,
		logger:  logger,
	}
}

// Analyze classifies the sentiment of the review whose preprocessed document
// lives at preprocessedLocation. rating is the raw rating string from the
// event image; an unparsable rating falls back to the neutral default.
func (s *SentimentService) Analyze(ctx context.Context, reviewID, preprocessedLocation, rating string) error {
	ref, err := storage.ParseRef(preprocessedLocation)
	if err != nil {
		return fmt.Errorf("parse preprocessed location for review %s: %w", reviewID, err)
	}

	obj, err := s.blobs.Get(ctx, ref)
	if err != nil {
		return fmt.Errorf("get preprocessed document %s: %w", ref, err)
	}

	var doc domain.ProcessedReview
	if err := json.Unmarshal(obj.Body, &doc); err != nil {
		return fmt.Errorf("unmarshal preprocessed document %s: %w", ref, err)
	}

	combined := sentiment.CombineText(doc.PreprocessedSummary, doc.PreprocessedReviewText)
	compound := s.scorer.Compound(combined)
	label := sentiment.Classify(compound, sentiment.ParseRating(rating))

	if err := s.reviews.ApplySentimentResult(ctx, reviewID, label); err != nil {
		return fmt.Errorf("apply sentiment result for review %s: %w", reviewID, err)
	}

	SentimentLabels.WithLabelValues(label).Inc()

	s.logger.InfoContext(ctx, "sentiment analysis completed",
		slog.String("review_id", reviewID),
		slog.String("sentiment", label),
		slog.Float64("compound", compound),
	)

	return nil
}
