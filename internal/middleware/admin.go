package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRequired runs after JWTProtected and admits the caller when any of
// these hold:
// 1. X-Admin-Token matches the configured token
// 2. the caller's email or ID is in the configured admin lists
// 3. the caller's user row has role admin and is not suspended
//
// The role claim is only consulted when there is no database, so a demotion
// or suspension takes effect on the next request.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)
	forbidden := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}

	return func(c *fiber.Ctx) error {
		userID, err := authctx.GetUserID(c)
		if err != nil || userID == uuid.Nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if cfg.AdminToken != "" &&
			subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1 {
			return c.Next()
		}
		if contains(adminEmails, authctx.GetEmail(c)) || contains(adminUserIDs, userID.String()) {
			return c.Next()
		}

		if db == nil {
			if authctx.GetRole(c) == models.RoleAdmin {
				return c.Next()
			}
			return forbidden(c)
		}

		var user models.User
		err = db.Select("id", "role", "status").First(&user, "id = ?", userID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("admin role lookup failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to verify admin access",
			})
		}
		if err == nil && user.Role == models.RoleAdmin && user.Status != models.UserStatusSuspended {
			return c.Next()
		}
		return forbidden(c)
	}
}

// RoleRequired admits callers whose role claim is one of roles.
func RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := authctx.GetUserID(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !contains(roles, authctx.GetRole(c)) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "This action requires the " + strings.Join(roles, " or ") + " role",
			})
		}
		return c.Next()
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	if val == "" {
		return false
	}
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
