package admin

import (
	"errors"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/boardinghub/boardinghub-api/internal/modules/listings"
	"github.com/boardinghub/boardinghub-api/internal/services"
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

type RoleRequest struct {
	Role string `json:"role"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, listings.ErrPropertyNotFound):
		return modules.Fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSelfAction):
		return modules.Fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidUserStatus), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrReasonRequired):
		return modules.Fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPermitNotApproved), errors.Is(err, ErrNotReviewable):
		return modules.Fail(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrHasListings):
		return modules.Fail(c, fiber.StatusConflict, "User still owns property listings")
	case errors.Is(err, services.ErrActiveBookings):
		return modules.Fail(c, fiber.StatusConflict, "User has pending or approved bookings")
	}
	slog.Error(fallback, "error", err, "path", c.Path())
	return modules.Fail(c, fiber.StatusInternalServerError, fallback)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	limit, offset := authctx.Paging(c)
	users, total, err := h.service.ListUsers(UserFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Query:  c.Query("q"),
	}, limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch users")
	}
	return c.JSON(dto.ListResponse{Items: users, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.service.GetUser(id)
	if err != nil {
		return fail(c, err, "Failed to fetch user")
	}
	return c.JSON(user)
}

func (h *Handler) SetUserStatus(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user, err := h.service.SetStatus(adminID, id, req.Status)
	if err != nil {
		return fail(c, err, "Failed to update user status")
	}
	return c.JSON(user)
}

func (h *Handler) SetUserRole(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user, err := h.service.SetRole(adminID, id, req.Role)
	if err != nil {
		return fail(c, err, "Failed to update user role")
	}
	return c.JSON(user)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if err := h.service.DeleteUser(c.UserContext(), adminID, id); err != nil {
		return fail(c, err, "Failed to delete user")
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted"})
}

func (h *Handler) ListProperties(c *fiber.Ctx) error {
	limit, offset := authctx.Paging(c)
	items, total, err := h.service.ListProperties(c.Query("status"), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch properties")
	}
	return c.JSON(dto.ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) ApproveProperty(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	p, err := h.service.ApproveProperty(c.UserContext(), adminID, id)
	if err != nil {
		return fail(c, err, "Failed to approve property")
	}
	return c.JSON(p)
}

func (h *Handler) RejectProperty(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p, err := h.service.RejectProperty(c.UserContext(), adminID, id, req.Reason)
	if err != nil {
		return fail(c, err, "Failed to reject property")
	}
	return c.JSON(p)
}
