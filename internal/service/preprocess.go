package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	"github.com/utafrali/ReviewModerationGo/internal/repository"
	"github.com/utafrali/ReviewModerationGo/internal/storage"
	"github.com/utafrali/ReviewModerationGo/internal/textproc"
	apperrors "github.com/utafrali/ReviewModerationGo/pkg/errors"
)

// ReviewEventPublisher publishes review lifecycle events to the change feed.
type ReviewEventPublisher interface {
	PublishReviewInserted(ctx context.Context, record *domain.ReviewRecord) error
}

// PreprocessService implements the preprocessing stage: it reads a raw review
// document from the blob store, canonicalizes its text, writes the processed
// document and inserts the moderation record. It also serves the read
// endpoints for records produced by the pipeline.
type PreprocessService struct {
	reviews   repository.ReviewRepository
	customers repository.CustomerRepository
	blobs     storage.BlobStore
	canon     textproc.Canonicalizer
	producer  ReviewEventPublisher
	logger    *slog.Logger

	rawBucket       string
	processedBucket string

	now func() time.Time
}

// NewPreprocessService creates the preprocessing service.
func NewPreprocessService(
	reviews repository.ReviewRepository,
	customers repository.CustomerRepository,
	blobs storage.BlobStore,
	canon textproc.Canonicalizer,
	producer ReviewEventPublisher,
	rawBucket, processedBucket string,
	logger *slog.Logger,
) *PreprocessService {
	return &PreprocessService{
		reviews:         reviews,
		customers:       customers,
		blobs:           blobs,
		canon:           canon,
		producer:        producer,
		rawBucket:       rawBucket,
		processedBucket: processedBucket,
		logger:          logger,
		now:             time.Now,
	}
}

// IngestResult is returned after a raw review has been preprocessed.
type IngestResult struct {
	ReviewID             string `json:"reviewId"`
	PreprocessedLocation string `json:"preprocessedLocation"`
}

// Ingest preprocesses the raw review stored at bucket/key: validation, id and
// timestamp derivation, text canonicalization, exactly one processed-blob
// write and one record insert, then a review.inserted event. A validation
// failure returns before any write. Re-ingesting the same document succeeds
// with the same result and publishes no second event.
func (s *PreprocessService) Ingest(ctx context.Context, bucket, key string) (*IngestResult, error) {
	rawRef := storage.BlobRef{Bucket: bucket, Key: key}

	obj, err := s.blobs.Get(ctx, rawRef)
	if err != nil {
		return nil, fmt.Errorf("get raw review %s: %w", rawRef, err)
	}

	var raw domain.RawReview
	if err := json.Unmarshal(obj.Body, &raw); err != nil {
		return nil, apperrors.InvalidInput("raw review is not valid JSON: " + err.Error())
	}

	if err := raw.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := s.now().UTC()
	reviewID := domain.NewReviewID(&raw, now)
	reviewTime := domain.ParseReviewTime(&raw, now)

	canonText, err := s.canon.Canonicalize(raw.Text())
	if err != nil {
		return nil, fmt.Errorf("canonicalize review text: %w", err)
	}
	canonSummary, err := s.canon.Canonicalize(raw.Summary)
	if err != nil {
		return nil, fmt.Errorf("canonicalize summary: %w", err)
	}

	processed := domain.ProcessedReview{
		ReviewID:               reviewID,
		ReviewerID:             raw.ReviewerID,
		ASIN:                   raw.ASIN,
		Overall:                raw.Rating(),
		PreprocessedReviewText: canonText,
		PreprocessedSummary:    canonSummary,
		OriginalReviewText:     raw.Text(),
		OriginalSummary:        raw.Summary,
		Category:               raw.ProductCategory(),
		ReviewerName:           raw.ReviewerName,
		Timestamp:              reviewTime,
		Helpful:                [2]int{raw.HelpfulVotes(), raw.TotalVotes()},
	}

	body, err := json.Marshal(processed)
	if err != nil {
		return nil, fmt.Errorf("marshal processed review: %w", err)
	}

	processedRef := storage.BlobRef{
		Bucket: s.processedBucket,
		Key:    fmt.Sprintf("preprocessed/%s/%s.json", raw.ReviewerID, reviewID),
	}
	if err := s.blobs.Put(ctx, processedRef, &storage.Object{
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		return nil, fmt.Errorf("put processed review %s: %w", processedRef, err)
	}

	originalText := raw.Text()
	originalSummary := raw.Summary
	rawLocation := rawRef.String()

	record := &domain.ReviewRecord{
		ReviewID:             reviewID,
		UserID:               raw.ReviewerID,
		ProductID:            raw.ASIN,
		OriginalReviewText:   &originalText,
		OriginalSummary:      &originalSummary,
		OriginalTextLocation: &rawLocation,
		PreprocessedLocation: processedRef.String(),
		OverallRating:        raw.Rating(),
		ReviewTime:           reviewTime,
		WordCount:            domain.WordCount(canonText),
		SummaryWordCount:     domain.WordCount(canonSummary),
		HelpfulVotes:         raw.HelpfulVotes(),
		TotalVotes:           raw.TotalVotes(),
		ReviewerName:         raw.ReviewerName,
		ProductCategory:      raw.ProductCategory(),
		PreprocessingStatus:  domain.PreprocessingStatusCompleted,
		ProfanityStatus:      domain.ProfanityStatusPending,
		SentimentStatus:      domain.SentimentStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.reviews.Create(ctx, record); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Same raw document ingested before. The derived id and blob
			// locations are deterministic, so report the existing record
			// without publishing a second event.
			s.logger.InfoContext(ctx, "review already ingested",
				slog.String("review_id", record.ReviewID),
			)
			return &IngestResult{
				ReviewID:             record.ReviewID,
				PreprocessedLocation: record.PreprocessedLocation,
			}, nil
		}
		return nil, fmt.Errorf("create review record: %w", err)
	}

	if err := s.producer.PublishReviewInserted(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.inserted event",
			slog.String("review_id", record.ReviewID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	ReviewsIngested.Inc()

	s.logger.InfoContext(ctx, "review preprocessed",
		slog.String("review_id", record.ReviewID),
		slog.String("user_id", record.UserID),
		slog.String("preprocessed_location", record.PreprocessedLocation),
	)

	return &IngestResult{
		ReviewID:             record.ReviewID,
		PreprocessedLocation: record.PreprocessedLocation,
	}, nil
}

// UploadObject stores a raw object in the blob store and returns its
// reference. It backs the upload endpoint that feeds the pipeline.
func (s *PreprocessService) UploadObject(ctx context.Context, bucket, key, contentType string, body []byte) (string, error) {
	if len(body) == 0 {
		return "", apperrors.InvalidInput("object body must not be empty")
	}

	ref := storage.BlobRef{Bucket: bucket, Key: key}
	if err := s.blobs.Put(ctx, ref, &storage.Object{ContentType: contentType, Body: body}); err != nil {
		return "", fmt.Errorf("put object %s: %w", ref, err)
	}

	s.logger.InfoContext(ctx, "object uploaded",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("size", len(body)),
	)

	return ref.String(), nil
}

// GetReview retrieves a review moderation record by id.
func (s *PreprocessService) GetReview(ctx context.Context, reviewID string) (*domain.ReviewRecord, error) {
	record, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return record, nil
}

// ListReviews returns a page of review records, newest first, and the total count.
func (s *PreprocessService) ListReviews(ctx context.Context, offset, limit int) ([]domain.ReviewRecord, int, error) {
	records, total, err := s.reviews.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return records, total, nil
}

// GetCustomer retrieves a customer tracking record by user id.
func (s *PreprocessService) GetCustomer(ctx context.Context, userID string) (*domain.CustomerRecord, error) {
	customer, err := s.customers.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get customer by id: %w", err)
	}
	return customer, nil
}
