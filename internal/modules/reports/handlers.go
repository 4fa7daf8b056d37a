package reports

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
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

func (h *Handler) Landlord(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return h.serve(c, &landlordID)
}

// Admin reports cover every landlord unless landlord_id is given.
func (h *Handler) Admin(c *fiber.Ctx) error {
	var landlordID *uuid.UUID
	if raw := c.Query("landlord_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return modules.Fail(c, fiber.StatusBadRequest, "Invalid landlord ID")
		}
		landlordID = &id
	}
	return h.serve(c, landlordID)
}

func (h *Handler) serve(c *fiber.Ctx, landlordID *uuid.UUID) error {
	format, err := ParseFormat(c.Query("format"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	from, to, err := ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, err.Error())
	}

	table, err := h.service.Build(c.UserContext(), c.Params("kind"), Scope{LandlordID: landlordID, From: from, To: to})
	if err != nil {
		if errors.Is(err, ErrUnknownKind) {
			return modules.Fail(c, fiber.StatusNotFound, err.Error())
		}
		slog.Error("report query failed", "error", err, "kind", c.Params("kind"))
		return modules.Fail(c, fiber.StatusInternalServerError, "Failed to generate report")
	}

	var buf bytes.Buffer
	if err := Render(&buf, table, format); err != nil {
		slog.Error("report render failed", "error", err, "kind", c.Params("kind"), "format", format)
		return modules.Fail(c, fiber.StatusInternalServerError, "Failed to generate report")
	}

	c.Attachment(format.Filename(table))
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(buf.Bytes())
}
