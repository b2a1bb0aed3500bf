package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/utils/auth"
	"github.com/roohithbala/placement/utils/response"
	"github.com/roohithbala/placement/utils/validation"
	"gorm.io/gorm"
)

// RegisterRequest represents a signup request. Only college email
// domains are accepted.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,college_email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// RegisterResponse represents a successful signup response.
type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// Register handles new account creation.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = model.NormalizeEmail(req.Email)

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var existing model.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to check existing account")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         "student",
	}
	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	token, _, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.Created(c, RegisterResponse{
		User:  toUserResponse(&user),
		Token: token,
	})
}
