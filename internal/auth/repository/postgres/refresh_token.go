package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
)

func (r *Repository) Store(ctx context.Context, rt *domain.RefreshToken) error {
	return r.exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rt.ID, rt.UserID, rt.Token, rt.ExpiresAt, rt.CreatedAt, rt.Revoked)
}

func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token = $1
		LIMIT 1;
	`

	var rt domain.RefreshToken
	err := r.scanOne(ctx, query, []any{token},
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt, &rt.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return &rt, nil
}

// Revoke soft-revokes a token. Rows are never deleted so the trail stays
// auditable; unknown or already revoked tokens are a no-op.
func (r *Repository) Revoke(ctx context.Context, token string) error {
	return r.exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE token = $1
	`, token)
}

// ConsumeByToken revokes a live token and returns it in one statement. The
// revoked = false guard makes it a compare-and-set: with two concurrent
// consumers exactly one gets the row, the other gets (nil, nil).
func (r *Repository) ConsumeByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE token = $1 AND revoked = false
		RETURNING id, user_id, token, expires_at, created_at, revoked;
	`

	var rt domain.RefreshToken
	err := r.scanOne(ctx, query, []any{token},
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt, &rt.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	return &rt, nil
}
