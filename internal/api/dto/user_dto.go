package dto

import (
	"time"

	"github.com/spec-kit/member-service/internal/domain"
)

// CreateUserRequest payload for new accounts.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	PhotoURL    string `json:"photo,omitempty"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	BirthDate   string `json:"birth"`
}

// UpdateUserRequest payload for account updates. Optional fields left empty
// are not changed.
type UpdateUserRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	PhotoURL    string `json:"photo,omitempty"`
	Role        string `json:"role,omitempty"`
	BirthDate   string `json:"birth"`
}

// UpdateRoleRequest payload for role changes.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdatePasswordRequest payload for password changes.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// UserResponse is the public view of an account; the password hash never
// leaves the service.
type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phoneNumber"`
	PhotoURL    string      `json:"photo,omitempty"`
	Role        domain.Role `json:"role"`
	BirthDate   string      `json:"birth"`
	Approved    bool        `json:"approved"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		PhotoURL:    user.PhotoURL,
		Role:        user.Role,
		BirthDate:   user.BirthDate,
		Approved:    user.Approved,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
