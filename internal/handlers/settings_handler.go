package handlers

import (
	"errors"
	"strings"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings *services.SettingsService
	audit    *services.AuditService
}

func NewSettingsHandler(settings *services.SettingsService, audit *services.AuditService) *SettingsHandler {
	return &SettingsHandler{settings: settings, audit: audit}
}

// GetSettings returns every setting decoded to its declared type.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	result, err := h.settings.All()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch settings",
		})
	}
	return c.JSON(result)
}

func (h *SettingsHandler) SetSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Setting key is required",
		})
	}

	var req dto.SetSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	setting, err := h.settings.Set(key, req.Value, req.Type)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSettingType) || errors.Is(err, services.ErrInvalidSettingValue) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save setting",
		})
	}

	actorID, _ := authctx.GetUserID(c)
	h.audit.Record(actorID, "setting.set", "setting", key, map[string]interface{}{
		"value": setting.Value, "type": setting.Type,
	})
	return c.JSON(setting)
}

func (h *SettingsHandler) DeleteSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.settings.Delete(key); err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete setting",
		})
	}

	actorID, _ := authctx.GetUserID(c)
	h.audit.Record(actorID, "setting.delete", "setting", key, nil)
	return c.JSON(dto.MessageResponse{Message: "Setting deleted"})
}
