package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/hendisantika/jwt-auth-service/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
)

type TokenGenerator interface {
	Generate(user *domain.User) (string, time.Time, error)
	Mint(user *domain.User, ttl time.Duration) (string, time.Time, error)
	Validate(tokenString string) (*JWTCustomClaims, error)
	ExtractSubject(tokenString string) (string, error)
	AccessTokenTTL() time.Duration
}

// TokenService signs and validates access tokens with a single symmetric
// secret. Validation is pure: only the token, the secret and the clock.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	clock     domain.Clock
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// NewTokenService fails on an empty secret or non-positive TTL so that a
// misconfigured signer aborts startup instead of failing per request.
func NewTokenService(secret string, accessTTL time.Duration, clock domain.Clock) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", autherror.ErrSigning)
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("%w: non-positive access token TTL", autherror.ErrSigning)
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		clock:     clock,
	}, nil
}

// Generate mints an access token with the configured TTL.
func (ts *TokenService) Generate(user *domain.User) (string, time.Time, error) {
	return ts.Mint(user, ts.accessTTL)
}

// Mint signs an access token for the user. The subject is the user's email.
func (ts *TokenService) Mint(user *domain.User, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: non-positive ttl", autherror.ErrSigning)
	}

	now := ts.clock.Now()
	expiresAt := now.Add(ttl)

	claims := JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Role.Authorities(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", autherror.ErrSigning, err)
	}

	return token, expiresAt, nil
}

// Validate parses the token, checks the signature and the expiry against the
// injected clock with zero leeway.
func (ts *TokenService) Validate(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, ts.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.clock.Now),
		jwt.WithExpirationRequired(),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, autherror.ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", autherror.ErrInvalidToken, err)
	case !token.Valid:
		return nil, autherror.ErrInvalidToken
	}

	return claims, nil
}

// ExtractSubject reads the subject even from an expired token, for diagnostics
// and for the request authenticator's first pass. Malformed or badly signed
// input still fails.
func (ts *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims := &JWTCustomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, ts.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", autherror.ErrInvalidToken, err)
	}

	return claims.Subject, nil
}

func (ts *TokenService) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}

func (ts *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return ts.secret, nil
}
