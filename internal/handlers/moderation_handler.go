package handlers

import (
	"errors"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	auditService      *services.AuditService
}

func NewModerationHandler(moderationService *services.ModerationService, auditService *services.AuditService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, auditService: auditService}
}

func (h *ModerationHandler) CreateFlag(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateFlagRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	flag, err := h.moderationService.CreateFlag(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyFlagged):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidFlagType), errors.Is(err, services.ErrInvalidFlagID),
			errors.Is(err, services.ErrReasonRequired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to submit report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(flag)
}

func (h *ModerationHandler) ListFlags(c *fiber.Ctx) error {
	limit, offset := authctx.Paging(c)

	flags, total, err := h.moderationService.ListFlags(c.Query("status"), c.Query("content_type"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flags",
		})
	}

	return c.JSON(dto.ListResponse{Items: flags, Total: total, Limit: limit, Offset: offset})
}

func (h *ModerationHandler) ActionFlag(c *fiber.Ctx) error {
	flagID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid flag ID",
		})
	}

	var req dto.ActionFlagRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.moderationService.ActionFlag(flagID, &req); err != nil {
		if errors.Is(err, services.ErrFlagNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	actorID, _ := authctx.GetUserID(c)
	h.auditService.Record(actorID, "flag."+req.Status, "flag", flagID.String(), map[string]interface{}{
		"admin_note": req.AdminNote,
	})

	return c.JSON(dto.MessageResponse{Message: "Flag updated successfully"})
}

func (h *ModerationHandler) ListAudit(c *fiber.Ctx) error {
	limit, offset := authctx.Paging(c)
	filter := services.AuditFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("actor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid actor_id",
			})
		}
		filter.ActorID = &id
	}

	entries, total, err := h.auditService.List(filter, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch audit log",
		})
	}
	return c.JSON(dto.ListResponse{Items: entries, Total: total, Limit: limit, Offset: offset})
}
