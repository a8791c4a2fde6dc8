package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/member-service/internal/auth"
	"github.com/spec-kit/member-service/internal/config"
	"github.com/spec-kit/member-service/internal/domain"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

type fakeThrottle struct {
	failures map[string]int
	max      int
	resets   int
}

func newFakeThrottle(max int) *fakeThrottle {
	return &fakeThrottle{failures: make(map[string]int), max: max}
}

func (t *fakeThrottle) Allow(_ context.Context, key string) bool {
	return t.failures[key] < t.max
}

func (t *fakeThrottle) RecordFailure(_ context.Context, key string) {
	t.failures[key]++
}

func (t *fakeThrottle) Reset(_ context.Context, key string) {
	t.failures[key] = 0
	t.resets++
}

func sessionTestConfig() config.Config {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.SessionTTLMinutes = 60
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		ID:           "user-" + email,
		Name:         "Seeded",
		Email:        email,
		PhoneNumber:  "37999999999",
		PasswordHash: hash,
		Role:         role,
		BirthDate:    "01/01/2000",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestLogin_Success(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice@example.com", "superstrong", domain.RoleAdministrator)
	svc := NewSessionService(sessionTestConfig(), SessionDependencies{UserRepo: repo})

	user, token, exp, err := svc.Login(context.Background(), "alice@example.com", "superstrong")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdministrator, claims.Role)
}

func TestLogin_WrongCredentialsCollapse(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice@example.com", "superstrong", domain.RoleMember)
	svc := NewSessionService(sessionTestConfig(), SessionDependencies{UserRepo: repo})

	_, _, _, badPassword := svc.Login(context.Background(), "alice@example.com", "wrong")
	_, _, _, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "whatever")

	assert.True(t, apperrors.IsKind(badPassword, "PERMISSION_DENIED"))
	assert.True(t, apperrors.IsKind(unknownEmail, "PERMISSION_DENIED"))
	// one indistinguishable message for both failure modes
	assert.Equal(t, badPassword.Error(), unknownEmail.Error())
}

func TestLogin_ThrottleBlocksAfterRepeatedFailures(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice@example.com", "superstrong", domain.RoleMember)
	throttle := newFakeThrottle(3)
	svc := NewSessionService(sessionTestConfig(), SessionDependencies{UserRepo: repo, Throttle: throttle})

	for i := 0; i < 3; i++ {
		_, _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong")
		assert.True(t, apperrors.IsKind(err, "PERMISSION_DENIED"))
	}

	// budget exhausted, even the right password is refused
	_, _, _, err := svc.Login(context.Background(), "alice@example.com", "superstrong")
	assert.True(t, apperrors.IsKind(err, "PERMISSION_DENIED"))
	assert.Equal(t, "too many failed login attempts.", err.Error())
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "alice@example.com", "superstrong", domain.RoleMember)
	throttle := newFakeThrottle(3)
	svc := NewSessionService(sessionTestConfig(), SessionDependencies{UserRepo: repo, Throttle: throttle})

	_, _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.Error(t, err)

	_, _, _, err = svc.Login(context.Background(), "alice@example.com", "superstrong")
	assert.NoError(t, err)
	assert.Equal(t, 1, throttle.resets)
	assert.Zero(t, throttle.failures["alice@example.com"])
}
