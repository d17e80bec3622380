// Package postgres implements the repository interfaces on PostgreSQL. Table
// names come from configuration and are sanitized as SQL identifiers before
// being interpolated into queries.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ReviewModerationGo/internal/domain"
	"github.com/utafrali/ReviewModerationGo/pkg/database"
	apperrors "github.com/utafrali/ReviewModerationGo/pkg/errors"
)

const reviewColumns = `review_id, user_id, product_id, original_review_text, original_summary,
		original_text_location, preprocessed_location, overall_rating, review_time,
		word_count, summary_word_count, helpful_votes, total_votes, reviewer_name,
		product_category, preprocessing_status, profanity_status, sentiment_status,
		has_profanity, sentiment, created_at, updated_at`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool  database.DBTX
	table string
}

// NewReviewRepository creates a review repository bound to the given table.
func NewReviewRepository(pool database.DBTX, table string) *ReviewRepository {
	return &ReviewRepository{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// Create inserts a new review record. An existing record with the same
// review id is left untouched and ErrAlreadyExists is returned, so a
// re-ingested document never regresses stage statuses.
func (r *ReviewRepository) Create(ctx context.Context, rec *domain.ReviewRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (review_id) DO NOTHING`,
		r.table, reviewColumns)

	tag, err := r.pool.Exec(ctx, query,
		rec.ReviewID,
		rec.UserID,
		rec.ProductID,
		rec.OriginalReviewText,
		rec.OriginalSummary,
		rec.OriginalTextLocation,
		rec.PreprocessedLocation,
		rec.OverallRating,
		rec.ReviewTime,
		rec.WordCount,
		rec.SummaryWordCount,
		rec.HelpfulVotes,
		rec.TotalVotes,
		rec.ReviewerName,
		rec.ProductCategory,
		rec.PreprocessingStatus,
		rec.ProfanityStatus,
		rec.SentimentStatus,
		rec.HasProfanity,
		rec.Sentiment,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.AlreadyExists("review", "review_id", rec.ReviewID)
	}

	return nil
}

// GetByID retrieves a review record by its id.
func (r *ReviewRepository) GetByID(ctx context.Context, reviewID string) (*domain.ReviewRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE review_id = $1`, reviewColumns, r.table)

	rec, err := scanReview(r.pool.QueryRow(ctx, query, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", reviewID)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rec, nil
}

// List returns review records newest first plus the total count.
func (r *ReviewRepository) List(ctx context.Context, offset, limit int) ([]domain.ReviewRecord, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, reviewColumns, r.table)

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ReviewRecord, 0, limit)
	for rows.Next() {
		rec, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews: %w", err)
	}

	return records, total, nil
}

// ApplySentimentResult overwrites the sentiment label and stage status.
func (r *ReviewRepository) ApplySentimentResult(ctx context.Context, reviewID, sentiment string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sentiment = $2, sentiment_status = $3, updated_at = NOW()
		WHERE review_id = $1`, r.table)

	tag, err := r.pool.Exec(ctx, query, reviewID, sentiment, domain.SentimentStatusProcessed)
	if err != nil {
		return fmt.Errorf("update sentiment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", reviewID)
	}
	return nil
}

// scanReview scans a full review row.
func scanReview(row pgx.Row) (*domain.ReviewRecord, error) {
	rec := &domain.ReviewRecord{}
	err := row.Scan(
		&rec.ReviewID,
		&rec.UserID,
		&rec.ProductID,
		&rec.OriginalReviewText,
		&rec.OriginalSummary,
		&rec.OriginalTextLocation,
		&rec.PreprocessedLocation,
		&rec.OverallRating,
		&rec.ReviewTime,
		&rec.WordCount,
		&rec.SummaryWordCount,
		&rec.HelpfulVotes,
		&rec.TotalVotes,
		&rec.ReviewerName,
		&rec.ProductCategory,
		&rec.PreprocessingStatus,
		&rec.ProfanityStatus,
		&rec.SentimentStatus,
		&rec.HasProfanity,
		&rec.Sentiment,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
