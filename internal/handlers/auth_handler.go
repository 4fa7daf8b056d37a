package handlers

import (
	"errors"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// authStatus maps auth service errors to HTTP status codes. ok is false for
// errors that should not reach the client.
func authStatus(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict, true
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized, true
	case errors.Is(err, services.ErrEmailNotVerified), errors.Is(err, services.ErrAccountSuspended):
		return fiber.StatusForbidden, true
	case errors.Is(err, services.ErrTooManyAttempts):
		return fiber.StatusTooManyRequests, true
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, services.ErrHasListings), errors.Is(err, services.ErrActiveBookings):
		return fiber.StatusConflict, true
	case errors.Is(err, services.ErrInvalidVerificationToken),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrPasswordRequired):
		return fiber.StatusBadRequest, true
	}
	return fiber.StatusInternalServerError, false
}

func authError(c *fiber.Ctx, err error, fallback string) error {
	status, ok := authStatus(err)
	msg := fallback
	if ok {
		msg = err.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return authError(c, err, "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.Token == "" && req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A verification code or link is required",
		})
	}

	resp, err := h.authService.VerifyEmail(&req)
	if err != nil {
		return authError(c, err, "Verification failed")
	}
	return c.JSON(resp)
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.authService.ResendVerification(c.UserContext(), req.Email); err != nil {
		return authError(c, err, "Failed to resend verification")
	}
	return c.JSON(dto.MessageResponse{Message: "If the account exists and is unverified, a new code has been sent"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return authError(c, err, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return authError(c, err, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.Logout(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to logout",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return authError(c, err, "Failed to start password reset")
	}
	return c.JSON(dto.MessageResponse{Message: "If an account exists for that email, a reset code has been sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.authService.ResetPassword(&req); err != nil {
		return authError(c, err, "Failed to reset password")
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated. Please sign in again."})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	user, err := h.authService.GetUser(userID)
	if err != nil {
		return authError(c, err, "Failed to load account")
	}
	return c.JSON(services.ToUserResponse(user))
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		return authError(c, err, "Failed to update profile")
	}
	return c.JSON(services.ToUserResponse(user))
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.authService.ChangePassword(userID, &req); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Current password is incorrect",
			})
		}
		return authError(c, err, "Failed to change password")
	}
	return c.JSON(dto.MessageResponse{Message: "Password changed successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.DeleteAccount(userID, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Incorrect password. Please try again.",
			})
		}
		return authError(c, err, "Failed to delete account")
	}

	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}
