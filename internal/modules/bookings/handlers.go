package bookings

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

type ReasonRequest struct {
	Reason string `json:"reason"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrDuplicateBooking), errors.Is(err, ErrNotPending), errors.Is(err, ErrNotCancellable),
		errors.Is(err, ErrNotApproved), errors.Is(err, ErrBedUnavailable), errors.Is(err, ErrRoomUnavailable),
		errors.Is(err, ErrPropertyUnavailable):
		return fiber.StatusConflict
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrBedNotFound), errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrMoveInPast), errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrDurationTooLong),
		errors.Is(err, ErrReasonRequired), errors.Is(err, ErrInvalidStatusFilter), errors.Is(err, ErrBedRequired):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		slog.Error(fallback, "error", err, "path", c.Path())
		return modules.Fail(c, status, fallback)
	}
	return modules.Fail(c, status, err.Error())
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
	if in.PropertyID == uuid.Nil {
		return modules.Fail(c, fiber.StatusBadRequest, "property_id is required")
	}
	booking, err := h.service.Create(tenantID, &in)
	if err != nil {
		return fail(c, err, "Failed to create booking")
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *Handler) ListMine(c *fiber.Ctx) error {
	tenantID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	limit, offset := authctx.Paging(c)
	items, total, err := h.service.ListMine(tenantID, c.Query("status"), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch bookings")
	}
	return c.JSON(dto.ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Cancel(c *fiber.Ctx) error {
	tenantID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid booking ID")
	}
	booking, err := h.service.Cancel(tenantID, id)
	if err != nil {
		return fail(c, err, "Failed to cancel booking")
	}
	return c.JSON(booking)
}

func (h *Handler) ListForLandlord(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var propertyID *uuid.UUID
	if raw := c.Query("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return modules.Fail(c, fiber.StatusBadRequest, "Invalid property_id")
		}
		propertyID = &id
	}
	limit, offset := authctx.Paging(c)
	items, total, err := h.service.ListForLandlord(landlordID, c.Query("status"), propertyID, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch bookings")
	}
	return c.JSON(dto.ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) decide(c *fiber.Ctx, action string) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid booking ID")
	}

	switch action {
	case "approve":
		b, err := h.service.Approve(landlordID, id)
		if err != nil {
			return fail(c, err, "Failed to approve booking")
		}
		return c.JSON(b)
	case "reject":
		var req ReasonRequest
		if err := c.BodyParser(&req); err != nil {
			return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		b, err := h.service.Reject(landlordID, id, req.Reason)
		if err != nil {
			return fail(c, err, "Failed to reject booking")
		}
		return c.JSON(b)
	default:
		b, err := h.service.Complete(landlordID, id)
		if err != nil {
			return fail(c, err, "Failed to complete booking")
		}
		return c.JSON(b)
	}
}

func (h *Handler) Approve(c *fiber.Ctx) error  { return h.decide(c, "approve") }
func (h *Handler) Reject(c *fiber.Ctx) error   { return h.decide(c, "reject") }
func (h *Handler) Complete(c *fiber.Ctx) error { return h.decide(c, "complete") }
