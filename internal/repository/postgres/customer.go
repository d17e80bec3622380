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

const customerColumns = `user_id, total_reviews, violation_count, is_banned, ban_date,
		created_date, last_updated, first_review_date, last_review_date,
		first_violation_date, last_violation_date`

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool  database.DBTX
	table string
}

// NewCustomerRepository creates a customer repository bound to the given table.
func NewCustomerRepository(pool database.DBTX, table string) *CustomerRepository {
	return &CustomerRepository{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// GetByID retrieves a customer record by user id.
func (r *CustomerRepository) GetByID(ctx context.Context, userID string) (*domain.CustomerRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, customerColumns, r.table)

	rec, err := scanCustomer(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", userID)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return rec, nil
}

// scanCustomer scans a full customer row.
func scanCustomer(row pgx.Row) (*domain.CustomerRecord, error) {
	rec := &domain.CustomerRecord{}
	err := row.Scan(
		&rec.UserID,
		&rec.TotalReviews,
		&rec.ViolationCount,
		&rec.IsBanned,
		&rec.BanDate,
		&rec.CreatedDate,
		&rec.LastUpdated,
		&rec.FirstReviewDate,
		&rec.LastReviewDate,
		&rec.FirstViolationDate,
		&rec.LastViolationDate,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
