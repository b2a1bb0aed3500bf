package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/utils/response"
	"github.com/roohithbala/placement/utils/validation"
)

// ForgotPasswordRequest asks for a reset link by email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a token and sets the new password.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ForgotPassword issues a reset token and emails the reset link. The
// response is identical whether or not the email has an account.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	err := h.resetService.IssueResetToken(c.UserContext(), model.NormalizeEmail(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSocialLoginOnly):
			return response.Error(c, fiber.StatusBadRequest,
				"This account signs in with a social provider", "SOCIAL_LOGIN_ONLY")
		case errors.Is(err, services.ErrEmailDelivery):
			return response.Error(c, fiber.StatusInternalServerError,
				"Failed to send the reset email, please try again", "DELIVERY_FAILED")
		default:
			return response.InternalServerError(c, "Failed to process the request")
		}
	}

	return response.SuccessWithMessage(c,
		"If an account exists for that email, a reset link has been sent", nil)
}

// VerifyResetToken reports whether a reset token is still usable,
// without consuming it.
func (h *AuthHandler) VerifyResetToken(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return response.BadRequest(c, "Token is required")
	}

	if err := h.resetService.VerifyResetToken(c.UserContext(), token); err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredToken) {
			return response.Error(c, fiber.StatusBadRequest,
				"Invalid or expired reset token", "INVALID_OR_EXPIRED_TOKEN")
		}
		return response.InternalServerError(c, "Failed to verify token")
	}

	return response.SuccessWithMessage(c, "Token is valid", nil)
}

// ResetPassword consumes a reset token and stores the new password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	err := h.resetService.ConsumeResetToken(c.UserContext(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOrExpiredToken):
			return response.Error(c, fiber.StatusBadRequest,
				"Invalid or expired reset token", "INVALID_OR_EXPIRED_TOKEN")
		case errors.Is(err, services.ErrPasswordTooShort):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.SuccessWithMessage(c, "Password has been reset, you can now sign in", nil)
}
