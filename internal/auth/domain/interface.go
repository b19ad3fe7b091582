package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/hendisantika/jwt-auth-service/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_refresh_token_repository.go -package=mocks github.com/hendisantika/jwt-auth-service/internal/auth/domain RefreshTokenRepository
//go:generate mockgen -destination=../../mocks/mock_transaction_manager.go -package=mocks github.com/hendisantika/jwt-auth-service/internal/auth/domain TransactionManager

type UserRepository interface {
	// GetByEmail returns (nil, nil) when no user exists for the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	RecordLoginAttempt(ctx context.Context, attempt *LoginAttempt) error
	CountRecentFailedAttempts(ctx context.Context, email, ip string, since time.Time) (int, error)
}

type RefreshTokenRepository interface {
	Store(ctx context.Context, rt *RefreshToken) error
	// GetByToken returns (nil, nil) when the token is unknown.
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	// Revoke sets revoked=true. Revoking an unknown or already revoked token is a no-op.
	Revoke(ctx context.Context, token string) error
	// ConsumeByToken atomically revokes a live token and returns it. Returns
	// (nil, nil) when no live row matched, so concurrent consumers cannot both win.
	ConsumeByToken(ctx context.Context, token string) (*RefreshToken, error)
}

// TransactionManager scopes a function to a single database transaction.
// The transaction travels in the context; repositories pick it up transparently.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) bool
}

// Clock is injectable wall-clock time, frozen in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
