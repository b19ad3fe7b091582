package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
)

type Repository struct {
	db Querier
}

func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// exec runs a statement, retrying once on failures pgx reports as safe to
// retry (nothing was written yet). Statements joining a transaction are never
// retried; the whole transaction is the retry unit there.
func (r *Repository) exec(ctx context.Context, sql string, args ...any) error {
	_, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil && !inTx(ctx) && pgconn.SafeToRetry(err) {
		_, err = r.querier(ctx).Exec(ctx, sql, args...)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", autherror.ErrStorage, err)
	}
	return nil
}

// scanOne runs a single-row query with the same retry contract as exec.
// pgx.ErrNoRows passes through untouched so callers can map a miss themselves;
// everything else comes back wrapped in ErrStorage.
func (r *Repository) scanOne(ctx context.Context, sql string, args []any, dest ...any) error {
	err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(dest...)
	if err != nil && !inTx(ctx) && pgconn.SafeToRetry(err) {
		err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(dest...)
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", autherror.ErrStorage, err)
	}
	return err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, firstname, lastname, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1;
	`

	var user domain.User
	err := r.scanOne(ctx, query, []any{email},
		&user.ID, &user.Firstname, &user.Lastname, &user.Email,
		&user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, firstname, lastname, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
		LIMIT 1;
	`

	var user domain.User
	err := r.scanOne(ctx, query, []any{id},
		&user.ID, &user.Firstname, &user.Lastname, &user.Email,
		&user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.querier(ctx).Exec(ctx, `
        INSERT INTO users (id, firstname, lastname, email, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, user.ID, user.Firstname, user.Lastname, user.Email, user.PasswordHash,
		user.Role, user.CreatedAt, user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return autherror.ErrEmailAlreadyInUse
	}
	if err != nil {
		return fmt.Errorf("%w: failed to create user: %v", autherror.ErrStorage, err)
	}

	return nil
}

func (r *Repository) RecordLoginAttempt(ctx context.Context, attempt *domain.LoginAttempt) error {
	return r.exec(ctx, `
		INSERT INTO login_attempts (id, email, ip_address, attempt_time, successful)
		VALUES ($1, $2, $3, $4, $5)
	`, attempt.ID, attempt.Email, attempt.IPAddress, attempt.AttemptTime, attempt.Successful)
}

func (r *Repository) CountRecentFailedAttempts(ctx context.Context, email, ip string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE email = $1 AND ip_address = $2 AND successful = false AND attempt_time >= $3;
	`
	var count int
	if err := r.scanOne(ctx, query, []any{email, ip, since}, &count); err != nil {
		return 0, fmt.Errorf("failed to count login attempts: %w", err)
	}

	return count, nil
}
