package auth

import (
	"time"

	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/utils/auth"
	"github.com/roohithbala/placement/utils/middleware"
	"github.com/roohithbala/placement/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and the password reset flow.
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *auth.JWTManager
	resetService         *services.PasswordResetService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	db *gorm.DB,
	jwtManager *auth.JWTManager,
	resetService *services.PasswordResetService,
	bruteForceProtection *middleware.BruteForceProtection,
) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		resetService:         resetService,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID               uint      `json:"id"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	ProfileCompleted bool      `json:"profile_completed"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		Role:             user.Role,
		ProfileCompleted: user.ProfileCompleted,
		CreatedAt:        user.CreatedAt,
	}
}
