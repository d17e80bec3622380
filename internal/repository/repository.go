// Package repository defines the persistence interfaces for moderation
// records and customer tracking.
package repository

import (
	"context"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
)

// ReviewRepository persists review moderation records.
type ReviewRepository interface {
	// Create inserts a new review record.
	Create(ctx context.Context, record *domain.ReviewRecord) error

	// GetByID retrieves a review record by its id.
	GetByID(ctx context.Context, reviewID string) (*domain.ReviewRecord, error)

	// List returns review records with pagination, newest first, along with
	// the total count.
	List(ctx context.Context, offset, limit int) ([]domain.ReviewRecord, int, error)

	// ApplySentimentResult overwrites the record's sentiment label and marks
	// the sentiment stage processed. The overwrite is idempotent.
	ApplySentimentResult(ctx context.Context, reviewID, sentiment string) error
}

// CustomerRepository reads customer tracking records.
type CustomerRepository interface {
	// GetByID retrieves a customer record by user id.
	GetByID(ctx context.Context, userID string) (*domain.CustomerRecord, error)
}

// ModerationResult reports the outcome of a profanity moderation update.
type ModerationResult struct {
	// Counted is false when the review's profanity transition had already
	// been applied. A redelivered event leaves all aggregates untouched.
	Counted bool
	// Customer is the tracking record after the update, nil when not Counted.
	Customer *domain.CustomerRecord
	// NewlyBanned is true when this update crossed the violation threshold
	// and set the ban.
	NewlyBanned bool
}

// ModerationRepository applies the profanity stage's transactional update:
// the conditional record transition, the customer aggregate increments and
// the threshold ban check, all in one transaction.
type ModerationRepository interface {
	ApplyProfanityResult(ctx context.Context, reviewID, userID string, hasProfanity bool, threshold int) (*ModerationResult, error)
}
