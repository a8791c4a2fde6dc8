package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/member-service/internal/auth"
	"github.com/spec-kit/member-service/internal/config"
	"github.com/spec-kit/member-service/internal/domain"
	"github.com/spec-kit/member-service/internal/repository"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

// SessionService authenticates credentials and issues session tokens.
type SessionService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	throttle LoginThrottle
}

// SessionDependencies encapsulates requirements for the session service.
type SessionDependencies struct {
	UserRepo repository.UserRepository
	Throttle LoginThrottle
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies) *SessionService {
	return &SessionService{
		users:    deps.UserRepo,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLMinutes),
		throttle: deps.Throttle,
	}
}

// Login verifies credentials and returns the user with a signed session
// token. Unknown e-mail and wrong password collapse into the same error so
// the response leaks neither.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if s.throttle != nil && !s.throttle.Allow(ctx, email) {
		return nil, "", time.Time{}, apperrors.NewPermissionDenied("too many failed login attempts.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.recordFailure(ctx, email)
			return nil, "", time.Time{}, apperrors.NewPermissionDenied("wrong e-mail or password.")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, email)
		return nil, "", time.Time{}, apperrors.NewPermissionDenied("wrong e-mail or password.")
	}

	if s.throttle != nil {
		s.throttle.Reset(ctx, email)
	}

	token, exp, err := s.tokenMgr.IssueToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *SessionService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *SessionService) recordFailure(ctx context.Context, email string) {
	if s.throttle != nil {
		s.throttle.RecordFailure(ctx, email)
	}
}
