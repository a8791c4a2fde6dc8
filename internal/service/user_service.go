package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/member-service/internal/auth"
	"github.com/spec-kit/member-service/internal/config"
	"github.com/spec-kit/member-service/internal/domain"
	"github.com/spec-kit/member-service/internal/events"
	"github.com/spec-kit/member-service/internal/repository"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Name        string
	Email       string
	PhoneNumber string
	PhotoURL    string
	Password    string
	Role        string
	BirthDate   string
}

// UpdateUserInput carries mutable fields for an account update. Empty
// strings mean "not supplied" for optional fields; name and birth date are
// required to stay non-empty.
type UpdateUserInput struct {
	ID          string
	Name        string
	Email       string
	PhoneNumber string
	PhotoURL    string
	Role        string
	BirthDate   string
}

// UserService enforces validation, uniqueness and role invariants over the
// member store.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CreateUser validates and persists a new account. The returned record
// carries the password hash; callers must treat it as opaque.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("you did not define a name.")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewValidationError("you did not define a password.")
	}
	if strings.TrimSpace(input.BirthDate) == "" {
		return nil, apperrors.NewValidationError("you did not define a birth date.")
	}

	if !domain.IsEmailValid(input.Email) {
		return nil, apperrors.NewInvalidField("invalid e-mail.")
	}
	if input.PhotoURL != "" && !domain.IsURLValid(input.PhotoURL) {
		return nil, apperrors.NewInvalidField("invalid photo.")
	}
	role, ok := domain.NormalizeRole(input.Role)
	if !ok {
		return nil, apperrors.NewInvalidField("invalid role. It must be administrator, member or trainee.")
	}
	if !domain.IsPhoneNumberValid(input.PhoneNumber) {
		return nil, apperrors.NewInvalidField("invalid phone number.")
	}

	if err := s.checkEmailAvailable(ctx, input.Email, ""); err != nil {
		return nil, err
	}
	if err := s.checkPhoneAvailable(ctx, input.PhoneNumber, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PhotoURL:     input.PhotoURL,
		PasswordHash: hash,
		Role:         role,
		BirthDate:    input.BirthDate,
		Approved:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the pre-checks race with concurrent inserts; the unique index
		// is the real arbiter
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("e-mail or phone number already in use by another account.")
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventUserCreated,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserCreatedPayload{Name: user.Name, Email: user.Email, Role: user.Role},
	})
	return user, nil
}

// GetUsers returns all accounts; an empty store yields an empty list.
func (s *UserService) GetUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUserByEmail returns the account registered with the given e-mail.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("this e-mail is not associated with any account.")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUserByID returns the account with the given id.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("this id does not exist.")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUserByPhoneNumber returns the account registered with the given number.
func (s *UserService) GetUserByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error) {
	user, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("this phone number is not associated with any account.")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser applies the supplied mutable fields to an existing account.
// Identity and password are untouched; role changes go through UpdateRole.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ID != "" && input.ID != user.ID {
		return nil, apperrors.NewInvalidField("id can not be updated.")
	}
	if input.Role != "" {
		role, ok := domain.NormalizeRole(input.Role)
		if !ok || role != user.Role {
			return nil, apperrors.NewInvalidField("only administrators can update a role.")
		}
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("you did not define a name.")
	}
	if strings.TrimSpace(input.BirthDate) == "" {
		return nil, apperrors.NewValidationError("you did not define a birth date.")
	}

	if input.Email != "" {
		if !domain.IsEmailValid(input.Email) {
			return nil, apperrors.NewInvalidField("invalid e-mail.")
		}
		if err := s.checkEmailAvailable(ctx, input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = input.Email
	}
	if input.PhotoURL != "" {
		if !domain.IsURLValid(input.PhotoURL) {
			return nil, apperrors.NewInvalidField("invalid photo.")
		}
		user.PhotoURL = input.PhotoURL
	}
	if input.PhoneNumber != "" {
		if !domain.IsPhoneNumberValid(input.PhoneNumber) {
			return nil, apperrors.NewInvalidField("invalid phone number.")
		}
		if err := s.checkPhoneAvailable(ctx, input.PhoneNumber, user.ID); err != nil {
			return nil, err
		}
		user.PhoneNumber = input.PhoneNumber
	}

	user.Name = input.Name
	user.BirthDate = input.BirthDate

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("e-mail or phone number already in use by another account.")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateRole persists the normalized role for an account. Restricting this
// to administrators is the route guard's job, not this method's.
func (s *UserService) UpdateRole(ctx context.Context, id, rawRole string) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, ok := domain.NormalizeRole(rawRole)
	if !ok {
		return nil, apperrors.NewInvalidField("invalid role. It must be administrator, member or trainee.")
	}

	oldRole := user.Role
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventUserRoleChanged,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserRoleChangedPayload{OldRole: oldRole, NewRole: role},
	})
	return user, nil
}

// UpdatePassword re-hashes and stores a new password.
func (s *UserService) UpdatePassword(ctx context.Context, id, newPassword string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewValidationError("you did not define a password.")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ApproveUser marks a pending account as approved, once.
func (s *UserService) ApproveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Approved {
		return nil, apperrors.NewConflict("user already approved.")
	}

	user.Approved = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventUserApproved,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})
	return user, nil
}

// DeleteUserByEmail removes the account registered with the given e-mail.
func (s *UserService) DeleteUserByEmail(ctx context.Context, email string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.users.DeleteByEmail(ctx, user.Email); err != nil {
		return apperrors.MapError(err)
	}
	s.publishDeleted(ctx, user)
	return nil
}

// DeleteUserByID removes the account with the given id.
func (s *UserService) DeleteUserByID(ctx context.Context, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.DeleteByID(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishDeleted(ctx, user)
	return nil
}

func (s *UserService) checkEmailAvailable(ctx context.Context, email, ownerID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID != ownerID {
		return apperrors.NewConflict("e-mail already in use by another account.")
	}
	return nil
}

func (s *UserService) checkPhoneAvailable(ctx context.Context, phoneNumber, ownerID string) error {
	existing, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID != ownerID {
		return apperrors.NewConflict("phone number already in use by another account.")
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *UserService) publishDeleted(ctx context.Context, user *domain.User) {
	s.publish(ctx, events.Event{
		Type:      events.EventUserDeleted,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserDeletedPayload{Email: user.Email},
	})
}
