package reviews

import (
	"errors"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type StatusRequest struct {
	Status string `json:"status"`
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": true, "message": rejected.Message, "reason": rejected.Reason,
		})
	case errors.Is(err, ErrReviewNotFound), errors.Is(err, ErrPropertyNotFound):
		return modules.Fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		return modules.Fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNotEligible):
		return modules.Fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrInvalidStatus):
		return modules.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	slog.Error(fallback, "error", err, "path", c.Path())
	return modules.Fail(c, fiber.StatusInternalServerError, fallback)
}

func (h *Handler) ListForProperty(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	limit, offset := authctx.Paging(c)
	items, total, err := h.service.ListForProperty(propertyID, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch reviews")
	}
	return c.JSON(dto.ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	tenantID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	review, err := h.service.Create(c.UserContext(), tenantID, &in)
	if err != nil {
		return fail(c, err, "Failed to create review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	tenantID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid review ID")
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	review, err := h.service.Update(c.UserContext(), tenantID, id, &in)
	if err != nil {
		return fail(c, err, "Failed to update review")
	}
	return c.JSON(review)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	tenantID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid review ID")
	}
	if err := h.service.Delete(c.UserContext(), tenantID, id); err != nil {
		return fail(c, err, "Failed to delete review")
	}
	return c.JSON(dto.MessageResponse{Message: "Review deleted"})
}

func (h *Handler) AdminList(c *fiber.Ctx) error {
	var propertyID *uuid.UUID
	if raw := c.Query("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return modules.Fail(c, fiber.StatusBadRequest, "Invalid property_id")
		}
		propertyID = &id
	}
	limit, offset := authctx.Paging(c)
	items, total, err := h.service.List(c.Query("status"), propertyID, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch reviews")
	}
	return c.JSON(dto.ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) AdminSetStatus(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid review ID")
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	review, err := h.service.SetStatus(c.UserContext(), adminID, id, req.Status)
	if err != nil {
		return fail(c, err, "Failed to update review")
	}
	return c.JSON(review)
}

func (h *Handler) AdminDelete(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid review ID")
	}
	if err := h.service.AdminDelete(c.UserContext(), adminID, id); err != nil {
		return fail(c, err, "Failed to delete review")
	}
	return c.JSON(dto.MessageResponse{Message: "Review deleted"})
}
