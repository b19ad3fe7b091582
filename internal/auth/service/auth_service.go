package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hendisantika/jwt-auth-service/config"
	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	"github.com/hendisantika/jwt-auth-service/internal/auth/dto"
	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
	"github.com/hendisantika/jwt-auth-service/pkg/constant"
)

// AuthService orchestrates registration, login, refresh and logout. Every
// successful operation mints exactly one access token and touches exactly one
// refresh-token record.
type AuthService struct {
	users   domain.UserRepository
	tokens  TokenGenerator
	refresh RefreshTokenManager
	hasher  domain.PasswordHasher
	tx      domain.TransactionManager
	clock   domain.Clock
	cfg     *config.Config

	// dummyHash keeps the bcrypt compare on the unknown-email path, so login
	// timing does not reveal whether an email exists.
	dummyHash string
}

func NewAuthService(
	users domain.UserRepository,
	tokens TokenGenerator,
	refresh RefreshTokenManager,
	hasher domain.PasswordHasher,
	tx domain.TransactionManager,
	clock domain.Clock,
	cfg *config.Config,
) *AuthService {
	if clock == nil {
		clock = SystemClock{}
	}

	dummyHash, err := hasher.Hash("not-a-real-password")
	if err != nil {
		log.Printf("warn: failed to precompute dummy hash: %v", err)
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		refresh:   refresh,
		hasher:    hasher,
		tx:        tx,
		clock:     clock,
		cfg:       cfg,
		dummyHash: dummyHash,
	}
}

func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthenticationResponse, error) {
	roleName := input.Role
	if roleName == "" {
		roleName = constant.DefaultUserRole
	}
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	accessToken, _, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	// User row and refresh token commit or roll back together. The unique
	// index on email backs up the pre-check under concurrent registration.
	var refreshToken *domain.RefreshToken
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return autherror.ErrEmailAlreadyInUse
		}

		if err := s.users.Create(ctx, user); err != nil {
			return err
		}

		refreshToken, err = s.refresh.Create(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.buildResponse(user, accessToken, refreshToken), nil
}

func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthenticationResponse, error) {
	windowStart := s.clock.Now().Add(-s.cfg.LoginAttemptWindow)
	failures, err := s.users.CountRecentFailedAttempts(ctx, input.Email, input.IPAddress, windowStart)
	if err != nil {
		return nil, err
	}
	if failures >= s.cfg.LoginMaxAttempts {
		return nil, autherror.ErrTooManyLoginAttempts
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		// Burn a compare anyway; unknown email and wrong password must look identical.
		s.hasher.Verify(input.Password, s.dummyHash)
		s.recordAttempt(ctx, input.Email, input.IPAddress, false)
		return nil, autherror.ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.recordAttempt(ctx, input.Email, input.IPAddress, false)
		return nil, autherror.ErrInvalidCredentials
	}

	accessToken, _, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refresh.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, input.Email, input.IPAddress, true)

	return s.buildResponse(user, accessToken, refreshToken), nil
}

// Refresh rotates on every use: the presented token is atomically revoked and
// a brand-new refresh token is issued with a full TTL. The old token's expiry
// is never extended; it is dead after this call either way.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenString string) (*dto.AuthenticationResponse, error) {
	var (
		user         *domain.User
		accessToken  string
		refreshToken *domain.RefreshToken
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		old, err := s.refresh.Consume(ctx, refreshTokenString)
		if err != nil {
			// Only lifecycle outcomes mean the token itself is bad. A storage
			// failure stays a storage failure; the caller must not treat it
			// as a dead token.
			if errors.Is(err, autherror.ErrRefreshTokenNotFound) ||
				errors.Is(err, autherror.ErrRefreshTokenRevoked) ||
				errors.Is(err, autherror.ErrRefreshTokenExpired) {
				return fmt.Errorf("%w: %w", autherror.ErrInvalidRefreshToken, err)
			}
			return err
		}

		user, err = s.users.GetByID(ctx, old.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return autherror.ErrInvalidRefreshToken
		}

		accessToken, _, err = s.tokens.Generate(user)
		if err != nil {
			return err
		}

		refreshToken, err = s.refresh.Create(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.buildResponse(user, accessToken, refreshToken), nil
}

// Logout revokes the refresh token. Replayed logouts succeed silently.
func (s *AuthService) Logout(ctx context.Context, refreshTokenString string) error {
	return s.refresh.Revoke(ctx, refreshTokenString)
}

func (s *AuthService) recordAttempt(ctx context.Context, email, ip string, success bool) {
	attempt := &domain.LoginAttempt{
		ID:          uuid.NewString(),
		Email:       email,
		IPAddress:   ip,
		AttemptTime: s.clock.Now(),
		Successful:  success,
	}
	if err := s.users.RecordLoginAttempt(ctx, attempt); err != nil {
		log.Printf("warn: failed to record login attempt for %s: %v", email, err)
	}
}

func (s *AuthService) buildResponse(user *domain.User, accessToken string, rt *domain.RefreshToken) *dto.AuthenticationResponse {
	return &dto.AuthenticationResponse{
		AccessToken:  accessToken,
		RefreshToken: rt.Token,
		ID:           user.ID,
		Email:        user.Email,
		Roles:        user.Role.Authorities(),
		TokenType:    constant.DefaultTokenType,
		ExpiresIn:    int(s.tokens.AccessTokenTTL() / time.Second),
	}
}
