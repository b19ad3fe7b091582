package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hendisantika/jwt-auth-service/config"
	"github.com/hendisantika/jwt-auth-service/internal/auth/domain"
	"github.com/hendisantika/jwt-auth-service/internal/auth/dto"
	"github.com/hendisantika/jwt-auth-service/internal/auth/service"
	autherror "github.com/hendisantika/jwt-auth-service/internal/errors"
	"github.com/hendisantika/jwt-auth-service/internal/mocks"
)

type authServiceFixture struct {
	users   *mocks.MockUserRepository
	tokens  *mocks.MockTokenGenerator
	refresh *mocks.MockRefreshTokenManager
	tx      *mocks.MockTransactionManager
	svc     *service.AuthService
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &authServiceFixture{
		users:   mocks.NewMockUserRepository(ctrl),
		tokens:  mocks.NewMockTokenGenerator(ctrl),
		refresh: mocks.NewMockRefreshTokenManager(ctrl),
		tx:      mocks.NewMockTransactionManager(ctrl),
	}

	cfg := config.New()
	cfg.LoginMaxAttempts = 5
	cfg.LoginAttemptWindow = 15 * time.Minute

	hasher := &service.BcryptHasher{Cost: bcrypt.MinCost}
	f.svc = service.NewAuthService(f.users, f.tokens, f.refresh, hasher, f.tx, frozenClock(), cfg)
	return f
}

// passthroughTx runs the transactional closure directly on the given context.
func (f *authServiceFixture) passthroughTx() {
	f.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func (f *authServiceFixture) expectAccessTTL() {
	f.tokens.EXPECT().AccessTokenTTL().Return(15 * time.Minute).AnyTimes()
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	input := dto.RegisterInput{
		Firstname: "Hendi",
		Lastname:  "Santika",
		Email:     "hendi@example.com",
		Password:  "S3cret-pass",
	}

	t.Run("success with default role", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()
		f.expectAccessTTL()

		f.tokens.EXPECT().Generate(gomock.Any()).
			DoAndReturn(func(u *domain.User) (string, time.Time, error) {
				assert.Equal(t, input.Email, u.Email)
				assert.Equal(t, domain.RoleUser, u.Role)
				assert.NotEmpty(t, u.ID)
				assert.NotEqual(t, input.Password, u.PasswordHash)
				return "signed.access.token", frozenTime.Add(15 * time.Minute), nil
			})
		f.users.EXPECT().GetByEmail(ctx, input.Email).Return(nil, nil)
		f.users.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		f.refresh.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, userID string) (*domain.RefreshToken, error) {
				return &domain.RefreshToken{ID: "rt-1", UserID: userID, Token: "opaque-refresh"}, nil
			})

		resp, err := f.svc.Register(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, "signed.access.token", resp.AccessToken)
		assert.Equal(t, "opaque-refresh", resp.RefreshToken)
		assert.Equal(t, input.Email, resp.Email)
		assert.Equal(t, []string{domain.AuthorityUser}, resp.Roles)
		assert.Equal(t, "BEARER", resp.TokenType)
		assert.Equal(t, 900, resp.ExpiresIn)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("admin role gets both authorities", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()
		f.expectAccessTTL()

		adminInput := input
		adminInput.Role = "ADMIN"

		f.tokens.EXPECT().Generate(gomock.Any()).Return("tok", frozenTime, nil)
		f.users.EXPECT().GetByEmail(ctx, adminInput.Email).Return(nil, nil)
		f.users.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		f.refresh.EXPECT().Create(ctx, gomock.Any()).
			Return(&domain.RefreshToken{Token: "opaque"}, nil)

		resp, err := f.svc.Register(ctx, adminInput)
		require.NoError(t, err)
		assert.Equal(t, []string{domain.AuthorityAdmin, domain.AuthorityUser}, resp.Roles)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		badInput := input
		badInput.Role = "SUPERUSER"

		_, err := f.svc.Register(ctx, badInput)
		assert.ErrorIs(t, err, autherror.ErrUnknownRole)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		f.tokens.EXPECT().Generate(gomock.Any()).Return("tok", frozenTime, nil)
		f.users.EXPECT().GetByEmail(ctx, input.Email).
			Return(&domain.User{ID: "existing", Email: input.Email}, nil)

		_, err := f.svc.Register(ctx, input)
		assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	})

	t.Run("storage failure rolls back", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		f.tokens.EXPECT().Generate(gomock.Any()).Return("tok", frozenTime, nil)
		f.users.EXPECT().GetByEmail(ctx, input.Email).Return(nil, nil)
		f.users.EXPECT().Create(ctx, gomock.Any()).
			Return(autherror.ErrStorage)

		_, err := f.svc.Register(ctx, input)
		assert.ErrorIs(t, err, autherror.ErrStorage)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	const password = "S3cret-pass"

	user := &domain.User{
		ID:    "user-123",
		Email: "hendi@example.com",
		Role:  domain.RoleUser,
	}

	input := dto.LoginInput{
		Email:     user.Email,
		Password:  password,
		IPAddress: "203.0.113.7",
	}

	t.Run("success", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.expectAccessTTL()

		u := *user
		u.PasswordHash = hashPassword(t, password)

		f.users.EXPECT().CountRecentFailedAttempts(ctx, input.Email, input.IPAddress, gomock.Any()).Return(0, nil)
		f.users.EXPECT().GetByEmail(ctx, input.Email).Return(&u, nil)
		f.tokens.EXPECT().Generate(&u).Return("signed.access.token", frozenTime.Add(15*time.Minute), nil)
		f.refresh.EXPECT().Create(ctx, u.ID).
			Return(&domain.RefreshToken{Token: "opaque-refresh", UserID: u.ID}, nil)
		f.users.EXPECT().RecordLoginAttempt(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, attempt *domain.LoginAttempt) error {
				assert.NotEmpty(t, attempt.ID)
				assert.Equal(t, input.Email, attempt.Email)
				assert.Equal(t, input.IPAddress, attempt.IPAddress)
				assert.Equal(t, frozenTime, attempt.AttemptTime)
				assert.True(t, attempt.Successful)
				return nil
			})

		resp, err := f.svc.Login(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "signed.access.token", resp.AccessToken)
		assert.Equal(t, "opaque-refresh", resp.RefreshToken)
		assert.Equal(t, u.ID, resp.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		u := *user
		u.PasswordHash = hashPassword(t, password)

		f.users.EXPECT().CountRecentFailedAttempts(ctx, input.Email, input.IPAddress, gomock.Any()).Return(0, nil)
		f.users.EXPECT().GetByEmail(ctx, input.Email).Return(&u, nil)
		f.users.EXPECT().RecordLoginAttempt(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, attempt *domain.LoginAttempt) error {
				assert.Equal(t, input.Email, attempt.Email)
				assert.False(t, attempt.Successful)
				return nil
			})

		badInput := input
		badInput.Password = "wrong-pass"

		_, err := f.svc.Login(ctx, badInput)
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		f.users.EXPECT().CountRecentFailedAttempts(ctx, "ghost@example.com", input.IPAddress, gomock.Any()).Return(0, nil)
		f.users.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, nil)
		f.users.EXPECT().RecordLoginAttempt(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, attempt *domain.LoginAttempt) error {
				assert.Equal(t, "ghost@example.com", attempt.Email)
				assert.False(t, attempt.Successful)
				return nil
			})

		ghostInput := input
		ghostInput.Email = "ghost@example.com"

		_, err := f.svc.Login(ctx, ghostInput)
		assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	})

	t.Run("too many failed attempts", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		f.users.EXPECT().CountRecentFailedAttempts(ctx, input.Email, input.IPAddress, gomock.Any()).Return(5, nil)

		_, err := f.svc.Login(ctx, input)
		assert.ErrorIs(t, err, autherror.ErrTooManyLoginAttempts)
	})

	t.Run("attempt window is anchored to the clock", func(t *testing.T) {
		f := newAuthServiceFixture(t)

		f.users.EXPECT().
			CountRecentFailedAttempts(ctx, input.Email, input.IPAddress, frozenTime.Add(-15*time.Minute)).
			Return(5, nil)

		_, err := f.svc.Login(ctx, input)
		assert.ErrorIs(t, err, autherror.ErrTooManyLoginAttempts)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	user := &domain.User{
		ID:    "user-123",
		Email: "hendi@example.com",
		Role:  domain.RoleUser,
	}

	t.Run("rotates the token", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()
		f.expectAccessTTL()

		old := &domain.RefreshToken{ID: "rt-old", UserID: user.ID, Token: "old-opaque"}
		f.refresh.EXPECT().Consume(ctx, "old-opaque").Return(old, nil)
		f.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
		f.tokens.EXPECT().Generate(user).Return("fresh.access.token", frozenTime.Add(15*time.Minute), nil)
		f.refresh.EXPECT().Create(ctx, user.ID).
			Return(&domain.RefreshToken{ID: "rt-new", UserID: user.ID, Token: "new-opaque"}, nil)

		resp, err := f.svc.Refresh(ctx, "old-opaque")
		require.NoError(t, err)
		assert.Equal(t, "fresh.access.token", resp.AccessToken)
		assert.Equal(t, "new-opaque", resp.RefreshToken)
		assert.NotEqual(t, "old-opaque", resp.RefreshToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		f.refresh.EXPECT().Consume(ctx, "revoked-opaque").
			Return(nil, autherror.ErrRefreshTokenRevoked)

		_, err := f.svc.Refresh(ctx, "revoked-opaque")
		assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
		assert.ErrorIs(t, err, autherror.ErrRefreshTokenRevoked)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		f.refresh.EXPECT().Consume(ctx, "expired-opaque").
			Return(nil, autherror.ErrRefreshTokenExpired)

		_, err := f.svc.Refresh(ctx, "expired-opaque")
		assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		f.refresh.EXPECT().Consume(ctx, "unknown").
			Return(nil, autherror.ErrRefreshTokenNotFound)

		_, err := f.svc.Refresh(ctx, "unknown")
		assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
	})

	t.Run("storage failure is not an invalid token", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		f.refresh.EXPECT().Consume(ctx, "opaque").
			Return(nil, fmt.Errorf("%w: connection refused", autherror.ErrStorage))

		_, err := f.svc.Refresh(ctx, "opaque")
		assert.ErrorIs(t, err, autherror.ErrStorage)
		assert.NotErrorIs(t, err, autherror.ErrInvalidRefreshToken)
	})

	t.Run("concurrent refreshes cannot both succeed", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()
		f.expectAccessTTL()

		// First consumer wins the compare-and-set, the second sees the token
		// already revoked.
		var consumed int32
		f.refresh.EXPECT().Consume(gomock.Any(), "shared-opaque").
			DoAndReturn(func(_ context.Context, token string) (*domain.RefreshToken, error) {
				if atomic.AddInt32(&consumed, 1) == 1 {
					return &domain.RefreshToken{ID: "rt-old", UserID: user.ID, Token: token}, nil
				}
				return nil, autherror.ErrRefreshTokenRevoked
			}).Times(2)
		f.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
		f.tokens.EXPECT().Generate(user).Return("fresh.access.token", frozenTime.Add(15*time.Minute), nil)
		f.refresh.EXPECT().Create(gomock.Any(), user.ID).
			Return(&domain.RefreshToken{ID: "rt-new", UserID: user.ID, Token: "new-opaque"}, nil)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Refresh(context.Background(), "shared-opaque")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var wins, losses int
		for err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
			losses++
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, losses)
	})

	t.Run("user deleted after token was issued", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.passthroughTx()

		old := &domain.RefreshToken{ID: "rt-old", UserID: "gone", Token: "orphan-opaque"}
		f.refresh.EXPECT().Consume(ctx, "orphan-opaque").Return(old, nil)
		f.users.EXPECT().GetByID(ctx, "gone").Return(nil, nil)

		_, err := f.svc.Refresh(ctx, "orphan-opaque")
		assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the refresh token", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.refresh.EXPECT().Revoke(ctx, "opaque").Return(nil)

		assert.NoError(t, f.svc.Logout(ctx, "opaque"))
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		f := newAuthServiceFixture(t)
		f.refresh.EXPECT().Revoke(ctx, "opaque").Return(errors.New("db down"))

		assert.Error(t, f.svc.Logout(ctx, "opaque"))
	})
}
