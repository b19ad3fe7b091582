package service

//go:generate mockgen -destination=../../mocks/mock_refresh_token_manager.go -package=mocks github.com/hendisantika/jwt-auth-service/internal/auth/service RefreshTokenManager

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
)

// refreshTokenBytes gives 256 bits of entropy per token.
const refreshTokenBytes = 32

type RefreshTokenManager interface {
	Create(ctx context.Context, userID string) (*domain.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Consume(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	IsUsable(rt *domain.RefreshToken) bool
	TTL() time.Duration
}

// RefreshTokenService owns the refresh-token lifecycle: opaque unguessable
// token strings, soft revocation, one-shot consumption for rotation.
type RefreshTokenService struct {
	repo  domain.RefreshTokenRepository
	ttl   time.Duration
	clock domain.Clock
}

func NewRefreshTokenService(repo domain.RefreshTokenRepository, ttl time.Duration, clock domain.Clock) *RefreshTokenService {
	if clock == nil {
		clock = SystemClock{}
	}

	return &RefreshTokenService{
		repo:  repo,
		ttl:   ttl,
		clock: clock,
	}
}

// Create persists a fresh token for the user. Each call produces a new row;
// multiple live tokens per user are fine (one per logged-in device).
func (s *RefreshTokenService) Create(ctx context.Context, userID string) (*domain.RefreshToken, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.clock.Now()
	rt := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     hex.EncodeToString(b),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		Revoked:   false,
	}

	if err := s.repo.Store(ctx, rt); err != nil {
		return nil, err
	}

	return rt, nil
}

func (s *RefreshTokenService) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	rt, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, autherror.ErrRefreshTokenNotFound
	}

	return rt, nil
}

// Consume revokes a live token and returns it. The compare-and-set in the
// repository guarantees at most one caller wins for a given token; the others
// see it as revoked. Expiry is checked after the swap so an expired token can
// never be exchanged.
func (s *RefreshTokenService) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	rt, err := s.repo.ConsumeByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		// No live row: distinguish unknown from revoked for the caller's logs.
		existing, err := s.repo.GetByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, autherror.ErrRefreshTokenNotFound
		}
		return nil, autherror.ErrRefreshTokenRevoked
	}

	if s.clock.Now().After(rt.ExpiresAt) {
		return nil, autherror.ErrRefreshTokenExpired
	}

	return rt, nil
}

// Revoke is idempotent; revoking an unknown or already revoked token succeeds.
func (s *RefreshTokenService) Revoke(ctx context.Context, token string) error {
	return s.repo.Revoke(ctx, token)
}

func (s *RefreshTokenService) IsUsable(rt *domain.RefreshToken) bool {
	return rt != nil && !rt.Revoked && s.clock.Now().Before(rt.ExpiresAt)
}

func (s *RefreshTokenService) TTL() time.Duration {
	return s.ttl
}
