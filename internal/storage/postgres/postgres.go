// Package postgres provides the PostgreSQL-backed BlobStore. Objects live in
// the blobs table as bytea rows, keyed by bucket and key.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ReviewModerationGo/internal/storage"
	"github.com/utafrali/ReviewModerationGo/pkg/database"
	apperrors "github.com/utafrali/ReviewModerationGo/pkg/errors"
)

// Store implements storage.BlobStore on PostgreSQL.
type Store struct {
	pool database.DBTX
}

// New creates a PostgreSQL blob store.
func New(pool database.DBTX) *Store {
	return &Store{pool: pool}
}

// Put upserts the object.
func (s *Store) Put(ctx context.Context, ref storage.BlobRef, obj *storage.Object) error {
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO blobs (bucket, key, content_type, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (bucket, key) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			body = EXCLUDED.body,
			updated_at = NOW()
	`, ref.Bucket, ref.Key, contentType, obj.Body)
	if err != nil {
		return fmt.Errorf("put blob %s: %w", ref, err)
	}
	return nil
}

// Get retrieves the object, or an error wrapping errors.ErrNotFound.
func (s *Store) Get(ctx context.Context, ref storage.BlobRef) (*storage.Object, error) {
	obj := &storage.Object{}
	err := s.pool.QueryRow(ctx, `
		SELECT content_type, body FROM blobs WHERE bucket = $1 AND key = $2
	`, ref.Bucket, ref.Key).Scan(&obj.ContentType, &obj.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("blob %s: %w", ref, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get blob %s: %w", ref, err)
	}
	return obj, nil
}
