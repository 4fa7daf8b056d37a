package permits

import (
	"errors"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ReviewRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

func fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrPermitNotFound), errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrProfileNotFound):
		return modules.Fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermitLocked), errors.Is(err, ErrPermitAlreadyFinal):
		return modules.Fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		return modules.Fail(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, storage.ErrUnsupportedFileType):
		return modules.Fail(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, ErrPermitTypeRequired), errors.Is(err, ErrRemarksRequired),
		errors.Is(err, ErrInvalidPermitStatus), errors.Is(err, ErrFileRequired):
		return modules.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	slog.Error(fallback, "error", err, "path", c.Path())
	return modules.Fail(c, fiber.StatusInternalServerError, fallback)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	profile, err := h.service.Profile(userID)
	if err != nil {
		return fail(c, err, "Failed to load profile")
	}
	return c.JSON(profile)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var in services.UpdateProfileInput
	if err := c.BodyParser(&in); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	profile, err := h.service.UpdateProfile(userID, in)
	if err != nil {
		return fail(c, err, "Failed to update profile")
	}
	return c.JSON(profile)
}

func (h *Handler) Upload(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, ErrFileRequired.Error())
	}
	permit, err := h.service.Upload(c.UserContext(), userID, c.FormValue("permit_type"), c.FormValue("permit_number"), fh)
	if err != nil {
		return fail(c, err, "Failed to upload permit")
	}
	return c.Status(fiber.StatusCreated).JSON(permit)
}

func (h *Handler) ListMine(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	permits, err := h.service.ListMine(userID)
	if err != nil {
		return fail(c, err, "Failed to fetch permits")
	}
	return c.JSON(fiber.Map{"permits": permits})
}

func (h *Handler) List(c *fiber.Ctx) error {
	limit, offset := authctx.Paging(c)
	permits, total, err := h.service.List(c.Query("status"), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch permits")
	}
	for i := range permits {
		permits[i].FileURL = AdminFilePath(permits[i].ID)
	}
	return c.JSON(dto.ListResponse{Items: permits, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Review(c *fiber.Ctx) error {
	adminID, _ := authctx.GetUserID(c)
	permitID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid permit ID")
	}
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Status != models.PermitStatusApproved && req.Status != models.PermitStatusRejected {
		return modules.Fail(c, fiber.StatusBadRequest, "status must be approved or rejected")
	}
	permit, err := h.service.Review(adminID, permitID, req.Status == models.PermitStatusApproved, req.Remarks)
	if err != nil {
		return fail(c, err, "Failed to review permit")
	}
	return c.JSON(permit)
}

// File streams the caller's own permit document.
func (h *Handler) File(c *fiber.Ctx) error {
	userID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return h.sendFile(c, &userID)
}

// AdminFile streams any permit document.
func (h *Handler) AdminFile(c *fiber.Ctx) error {
	return h.sendFile(c, nil)
}

func (h *Handler) sendFile(c *fiber.Ctx, ownerID *uuid.UUID) error {
	permitID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid permit ID")
	}
	file, err := h.service.OpenFile(c.UserContext(), permitID, ownerID)
	if err != nil {
		return fail(c, err, "Failed to open permit file")
	}
	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+file.Name+`"`)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.SendStream(file.Body)
}
