package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	"github.com/utafrali/ReviewModerationGo/internal/profanity"
	"github.com/utafrali/ReviewModerationGo/internal/repository"
	"github.com/utafrali/ReviewModerationGo/internal/storage"
)

// ProfanityService implements the profanity stage: it resolves the review's
// original text, classifies it, and applies the transactional moderation
// update (record transition, customer aggregates, threshold ban).
type ProfanityService struct {
	moderation repository.ModerationRepository
	blobs      storage.BlobStore
	classifier profanity.Classifier
	threshold  int
	logger     *slog.Logger
}

// NewProfanityService creates the profanity stage service. threshold is the
// violation count at which a customer is banned.
func NewProfanityService(
	moderation repository.ModerationRepository,
	blobs storage.BlobStore,
	classifier profanity.Classifier,
	threshold int,
	logger *slog.Logger,
) *ProfanityService {
	return &ProfanityService{
		moderation: moderation,
		blobs:      blobs,
		classifier: classifier,
		threshold:  threshold,
		logger:     logger,
	}
}

// Check runs the profanity check for the given review record image. The
// review is flagged when either the review text or the summary is profane.
// A redelivered event finds the record already transitioned and leaves every
// aggregate untouched.
func (s *ProfanityService) Check(ctx context.Context, record *domain.ReviewRecord) error {
	reviewText, summary, err := s.resolveText(ctx, record)
	if err != nil {
		return fmt.Errorf("resolve original text for review %s: %w", record.ReviewID, err)
	}

	flagged := s.classifier.IsProfane(reviewText) || s.classifier.IsProfane(summary)

	result, err := s.moderation.ApplyProfanityResult(ctx, record.ReviewID, record.UserID, flagged, s.threshold)
	if err != nil {
		return fmt.Errorf("apply profanity result for review %s: %w", record.ReviewID, err)
	}

	if !result.Counted {
		s.logger.DebugContext(ctx, "profanity result already applied, skipping",
			slog.String("review_id", record.ReviewID),
		)
		return nil
	}

	label := ProfanityResultClean
	if flagged {
		label = ProfanityResultFlagged
	}
	ProfanityChecks.WithLabelValues(label).Inc()

	s.logger.InfoContext(ctx, "profanity check completed",
		slog.String("review_id", record.ReviewID),
		slog.String("user_id", record.UserID),
		slog.Bool("has_profanity", flagged),
		slog.Int("violation_count", result.Customer.ViolationCount),
	)

	if result.NewlyBanned {
		CustomersBanned.Inc()
		s.logger.WarnContext(ctx, "customer banned for repeated violations",
			slog.String("user_id", record.UserID),
			slog.Int("violation_count", result.Customer.ViolationCount),
			slog.Int("threshold", s.threshold),
		)
	}

	return nil
}

// resolveText returns the review text and summary to classify. Inline text on
// the record image wins; otherwise the raw document is dereferenced from the
// blob store. A record with neither yields empty text, which is never profane.
func (s *ProfanityService) resolveText(ctx context.Context, record *domain.ReviewRecord) (string, string, error) {
	src := record.TextSource()
	if src.Inline {
		return src.ReviewText, src.Summary, nil
	}
	if src.Location == "" {
		return "", "", nil
	}

	ref, err := storage.ParseRef(src.Location)
	if err != nil {
		return "", "", fmt.Errorf("parse text location: %w", err)
	}

	obj, err := s.blobs.Get(ctx, ref)
	if err != nil {
		return "", "", fmt.Errorf("get raw document: %w", err)
	}

	var raw domain.RawReview
	if err := json.Unmarshal(obj.Body, &raw); err != nil {
		return "", "", fmt.Errorf("unmarshal raw document: %w", err)
	}

	return raw.Text(), raw.Summary, nil
}
