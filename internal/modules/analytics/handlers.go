package analytics

import (
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Landlord(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	out, err := h.service.Landlord(c.UserContext(), landlordID)
	if err != nil {
		slog.Error("landlord analytics failed", "error", err, "landlord_id", landlordID)
		return modules.Fail(c, fiber.StatusInternalServerError, "Failed to load analytics")
	}
	return c.JSON(out)
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	out, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		slog.Error("admin dashboard failed", "error", err)
		return modules.Fail(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}
	return c.JSON(out)
}
