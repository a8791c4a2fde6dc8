package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-service/internal/api/dto"
	"github.com/spec-kit/member-service/internal/service"
	apperrors "github.com/spec-kit/member-service/pkg/util/errorutil"
)

// UsersHandler exposes account CRUD endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /users/create.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidField("invalid payload")
	}

	user, err := h.users.CreateUser(c.Context(), service.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		PhotoURL:    req.PhotoURL,
		Password:    req.Password,
		Role:        req.Role,
		BirthDate:   req.BirthDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /users/get.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.GetUsers(c.Context())
	if err != nil {
		return err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// GetByEmail handles GET /users/get/email/:email.
func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	user, err := h.users.GetUserByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetByID handles GET /users/get/id/:id.
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetByPhoneNumber handles GET /users/get/phone/:phone.
func (h *UsersHandler) GetByPhoneNumber(c *fiber.Ctx) error {
	user, err := h.users.GetUserByPhoneNumber(c.Context(), c.Params("phone"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /users/update/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidField("invalid payload")
	}

	user, err := h.users.UpdateUser(c.Context(), c.Params("id"), service.UpdateUserInput{
		ID:          req.ID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		PhotoURL:    req.PhotoURL,
		Role:        req.Role,
		BirthDate:   req.BirthDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateRole handles PUT /users/update/role/:id.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidField("invalid payload")
	}

	user, err := h.users.UpdateRole(c.Context(), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdatePassword handles PUT /users/update/password/:id.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidField("invalid payload")
	}

	if err := h.users.UpdatePassword(c.Context(), c.Params("id"), req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_updated"}})
}

// Approve handles PUT /users/approve/:id.
func (h *UsersHandler) Approve(c *fiber.Ctx) error {
	user, err := h.users.ApproveUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// DeleteByEmail handles DELETE /users/delete/email/:email.
func (h *UsersHandler) DeleteByEmail(c *fiber.Ctx) error {
	if err := h.users.DeleteUserByEmail(c.Context(), c.Params("email")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}

// DeleteByID handles DELETE /users/delete/id/:id.
func (h *UsersHandler) DeleteByID(c *fiber.Ctx) error {
	if err := h.users.DeleteUserByID(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}
