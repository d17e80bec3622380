package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	"github.com/utafrali/ReviewModerationGo/internal/repository"
	"github.com/utafrali/ReviewModerationGo/pkg/database"
)

// ModerationRepository implements repository.ModerationRepository using
// PostgreSQL. All timestamps inside the update come from the database clock
// so a single transaction observes one consistent time.
type ModerationRepository struct {
	pool           database.DBTX
	reviewsTable   string
	customersTable string
}

// NewModerationRepository creates the moderation repository bound to the
// given review and customer tables.
func NewModerationRepository(pool database.DBTX, reviewsTable, customersTable string) *ModerationRepository {
	return &ModerationRepository{
		pool:           pool,
		reviewsTable:   pgx.Identifier{reviewsTable}.Sanitize(),
		customersTable: pgx.Identifier{customersTable}.Sanitize(),
	}
}

// ApplyProfanityResult applies the profanity stage's moderation update in one
// transaction:
//
//  1. The review's profanity status moves pending -> completed, conditionally.
//     Zero rows affected means the result was already applied (redelivered
//     event); the transaction ends without touching any aggregate.
//  2. The customer record is upserted with store-side increments, returning
//     the fresh row.
//  3. When the fresh violation count reaches the threshold and the customer
//     is not yet banned, the ban is set. The is_banned = FALSE guard makes
//     the ban date immutable once written.
func (r *ModerationRepository) ApplyProfanityResult(ctx context.Context, reviewID, userID string, hasProfanity bool, threshold int) (*repository.ModerationResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin moderation tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	transition := fmt.Sprintf(`
		UPDATE %s
		SET profanity_status = $2, has_profanity = $3, updated_at = NOW()
		WHERE review_id = $1 AND profanity_status = $4`, r.reviewsTable)

	tag, err := tx.Exec(ctx, transition,
		reviewID, domain.ProfanityStatusCompleted, hasProfanity, domain.ProfanityStatusPending)
	if err != nil {
		return nil, fmt.Errorf("transition review %s: %w", reviewID, err)
	}
	if tag.RowsAffected() == 0 {
		// Already counted by an earlier delivery.
		return &repository.ModerationResult{Counted: false}, nil
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (user_id, total_reviews, violation_count, is_banned,
			created_date, last_updated, first_review_date, last_review_date,
			first_violation_date, last_violation_date)
		VALUES ($1, 1, CASE WHEN $2 THEN 1 ELSE 0 END, FALSE,
			NOW(), NOW(), NOW(), NOW(),
			CASE WHEN $2 THEN NOW() END, CASE WHEN $2 THEN NOW() END)
		ON CONFLICT (user_id) DO UPDATE SET
			total_reviews = %[1]s.total_reviews + 1,
			violation_count = %[1]s.violation_count + CASE WHEN $2 THEN 1 ELSE 0 END,
			last_updated = NOW(),
			last_review_date = NOW(),
			first_violation_date = CASE WHEN $2 THEN COALESCE(%[1]s.first_violation_date, NOW()) ELSE %[1]s.first_violation_date END,
			last_violation_date = CASE WHEN $2 THEN NOW() ELSE %[1]s.last_violation_date END
		RETURNING `+customerColumns, r.customersTable)

	customer, err := scanCustomer(tx.QueryRow(ctx, upsert, userID, hasProfanity))
	if err != nil {
		return nil, fmt.Errorf("upsert customer %s: %w", userID, err)
	}

	result := &repository.ModerationResult{
		Counted:  true,
		Customer: customer,
	}

	if customer.ViolationCount >= threshold && !customer.IsBanned {
		ban := fmt.Sprintf(`
			UPDATE %s
			SET is_banned = TRUE, ban_date = NOW(), last_updated = NOW()
			WHERE user_id = $1 AND is_banned = FALSE
			RETURNING ban_date`, r.customersTable)

		err := tx.QueryRow(ctx, ban, userID).Scan(&customer.BanDate)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// Banned concurrently; nothing to do.
		case err != nil:
			return nil, fmt.Errorf("ban customer %s: %w", userID, err)
		default:
			customer.IsBanned = true
			result.NewlyBanned = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit moderation tx: %w", err)
	}

	return result, nil
}
