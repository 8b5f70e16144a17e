package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thermopolio/thermopolio/internal/models"
	"github.com/thermopolio/thermopolio/internal/storage"
)

// CreateToken stores a new email token.
func (s *Storage) CreateToken(ctx context.Context, token models.EmailToken) error {
	const op = "storage.CreateToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO email_tokens (token, user_uid, purpose, expires_at)
			  VALUES ($1, $2, $3, $4)`
	_, err := s.DB.ExecContext(ctx, query,
		token.Token, token.UserUID, token.Purpose, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetToken returns the email token record, used or not.
func (s *Storage) GetToken(ctx context.Context, token string) (*models.EmailToken, error) {
	const op = "storage.GetToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, user_uid, purpose, expires_at, used_at
			  FROM email_tokens
			  WHERE token = $1`
	t := &models.EmailToken{}
	var usedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, token).Scan(
		&t.Token, &t.UserUID, &t.Purpose, &t.ExpiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		// The column is uuid-typed; a token that does not even parse
		// as a UUID cannot match any row.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return t, nil
}

// MarkTokenUsed invalidates the token by stamping used_at. Only an
// unused token is stamped, so a token is consumed at most once.
func (s *Storage) MarkTokenUsed(ctx context.Context, token string) error {
	const op = "storage.MarkTokenUsed"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE email_tokens
			  SET used_at = NOW()
			  WHERE token = $1 AND used_at IS NULL`
	result, err := s.DB.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}
