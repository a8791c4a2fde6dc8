package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/member-service/internal/auth"
	"github.com/spec-kit/member-service/internal/config"
	"github.com/spec-kit/member-service/internal/domain"
	"github.com/spec-kit/member-service/internal/events"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

// stubUserRepo is an in-memory UserRepository honoring the pgx.ErrNoRows
// miss contract.
type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return cloneUser(user), nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByPhoneNumber(_ context.Context, phoneNumber string) (*domain.User, error) {
	for _, user := range r.users {
		if user.PhoneNumber == phoneNumber {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) DeleteByEmail(_ context.Context, email string) error {
	for id, user := range r.users {
		if user.Email == email {
			delete(r.users, id)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newTestUserService(repo *stubUserRepo) *UserService {
	cfg := config.Config{}
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return NewUserService(cfg, UserDependencies{
		UserRepo:   repo,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
}

func validInput() CreateUserInput {
	return CreateUserInput{
		Name:        "Alice",
		Email:       "alice@example.com",
		PhoneNumber: "37999999999",
		PhotoURL:    "https://example.com/alice.png",
		Password:    "superstrong",
		Role:        "ADM ",
		BirthDate:   "01/01/2000",
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	user, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleAdministrator, user.Role, "role must be stored canonical")
	assert.False(t, user.Approved, "new accounts start unapproved")

	assert.NotEqual(t, "superstrong", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "superstrong"))
	assert.Error(t, auth.ComparePassword(user.PasswordHash, "otherpass"))

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, stored.Email)
}

func TestCreateUser_MissingRequiredFields(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())

	cases := map[string]func(*CreateUserInput){
		"name":     func(in *CreateUserInput) { in.Name = "  " },
		"password": func(in *CreateUserInput) { in.Password = "" },
		"birth":    func(in *CreateUserInput) { in.BirthDate = "" },
	}
	for field, mutate := range cases {
		input := validInput()
		mutate(&input)
		_, err := svc.CreateUser(context.Background(), input)
		assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"), "missing %s: got %v", field, err)
	}
}

func TestCreateUser_InvalidFields(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())

	cases := map[string]func(*CreateUserInput){
		"email": func(in *CreateUserInput) { in.Email = "not-an-email" },
		"photo": func(in *CreateUserInput) { in.PhotoURL = "not a url" },
		"role":  func(in *CreateUserInput) { in.Role = "wizard" },
		"phone": func(in *CreateUserInput) { in.PhoneNumber = "123" },
	}
	for field, mutate := range cases {
		input := validInput()
		mutate(&input)
		_, err := svc.CreateUser(context.Background(), input)
		assert.True(t, apperrors.IsKind(err, "INVALID_FIELD"), "invalid %s: got %v", field, err)
	}
}

func TestCreateUser_OptionalPhoto(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())

	input := validInput()
	input.PhotoURL = ""
	user, err := svc.CreateUser(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, user.PhotoURL)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	_, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	second := validInput()
	second.PhoneNumber = "37888888888"
	_, err = svc.CreateUser(context.Background(), second)
	assert.True(t, apperrors.IsKind(err, "CONFLICT"), "got %v", err)
	assert.Len(t, repo.users, 1)
}

func TestCreateUser_DuplicatePhone(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)

	first := validInput()
	first.PhoneNumber = "999999999"
	_, err := svc.CreateUser(context.Background(), first)
	require.NoError(t, err)

	second := validInput()
	second.Email = "bob@example.com"
	second.PhoneNumber = "999999999"
	_, err = svc.CreateUser(context.Background(), second)
	assert.True(t, apperrors.IsKind(err, "CONFLICT"), "got %v", err)
	assert.Len(t, repo.users, 1, "exactly one record must exist afterwards")
}

func TestGetUsers_EmptyStore(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())

	users, err := svc.GetUsers(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestGetUser_Lookups(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	byID, err := svc.GetUserByID(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byEmail, err := svc.GetUserByEmail(context.Background(), "alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byPhone, err := svc.GetUserByPhoneNumber(context.Background(), "37999999999")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byPhone.ID)

	_, err = svc.GetUserByID(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
	_, err = svc.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
	_, err = svc.GetUserByPhoneNumber(context.Background(), "37000000000")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}

func validUpdate() UpdateUserInput {
	return UpdateUserInput{Name: "Alice Updated", BirthDate: "01/01/2000"}
}

func TestUpdateUser_Success(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	input := validUpdate()
	input.Email = "alice.new@example.com"
	updated, err := svc.UpdateUser(context.Background(), created.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "Alice Updated", updated.Name)
	assert.Equal(t, "alice.new@example.com", updated.Email)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash, "password untouched by update")
	assert.Equal(t, created.ID, updated.ID)
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())

	_, err := svc.UpdateUser(context.Background(), "missing", validUpdate())
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}

func TestUpdateUser_EmailOfOtherUser(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	_, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	other := validInput()
	other.Email = "bob@example.com"
	other.PhoneNumber = "37888888888"
	bob, err := svc.CreateUser(context.Background(), other)
	require.NoError(t, err)

	input := validUpdate()
	input.Email = "alice@example.com"
	_, err = svc.UpdateUser(context.Background(), bob.ID, input)
	assert.True(t, apperrors.IsKind(err, "CONFLICT"), "got %v", err)
}

func TestUpdateUser_OwnEmailIsNotAConflict(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	input := validUpdate()
	input.Email = "alice@example.com"
	_, err = svc.UpdateUser(context.Background(), created.ID, input)
	assert.NoError(t, err)
}

func TestUpdateUser_RejectsIdentityAndRoleChanges(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	input := validUpdate()
	input.ID = "different-id"
	_, err = svc.UpdateUser(context.Background(), created.ID, input)
	assert.True(t, apperrors.IsKind(err, "INVALID_FIELD"))

	input = validUpdate()
	input.Role = "trainee"
	_, err = svc.UpdateUser(context.Background(), created.ID, input)
	assert.True(t, apperrors.IsKind(err, "INVALID_FIELD"))
}

func TestUpdateUser_EmptyNameOrBirth(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	input := validUpdate()
	input.Name = ""
	_, err = svc.UpdateUser(context.Background(), created.ID, input)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))

	input = validUpdate()
	input.BirthDate = " "
	_, err = svc.UpdateUser(context.Background(), created.ID, input)
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))
}

func TestUpdateRole(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateRole(context.Background(), created.ID, "Member")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, updated.Role)

	_, err = svc.UpdateRole(context.Background(), created.ID, "wizard")
	assert.True(t, apperrors.IsKind(err, "INVALID_FIELD"))

	_, err = svc.UpdateRole(context.Background(), "missing", "member")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}

func TestUpdatePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), created.ID, "newsecret")
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "newsecret"))
	assert.Error(t, auth.ComparePassword(stored.PasswordHash, "superstrong"))

	err = svc.UpdatePassword(context.Background(), created.ID, "  ")
	assert.True(t, apperrors.IsKind(err, "VALIDATION_FAILED"))

	err = svc.UpdatePassword(context.Background(), "missing", "whatever")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}

func TestApproveUser(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	approved, err := svc.ApproveUser(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	_, err = svc.ApproveUser(context.Background(), created.ID)
	assert.True(t, apperrors.IsKind(err, "CONFLICT"), "second approval must conflict")

	_, err = svc.ApproveUser(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}

func TestDeleteUser(t *testing.T) {
	svc := newTestUserService(newStubUserRepo())
	created, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserByID(context.Background(), created.ID))

	_, err = svc.GetUserByID(context.Background(), created.ID)
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"), "freshly deleted id must be gone")

	err = svc.DeleteUserByID(context.Background(), created.ID)
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))

	err = svc.DeleteUserByEmail(context.Background(), "alice@example.com")
	assert.True(t, apperrors.IsKind(err, "NOT_FOUND"))
}

func TestDeleteUserByEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo)
	_, err := svc.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserByEmail(context.Background(), "alice@example.com"))
	assert.Empty(t, repo.users)
}
