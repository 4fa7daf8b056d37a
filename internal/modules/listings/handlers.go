package listings

import (
	"errors"
	"log/slog"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/modules"
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

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrPropertyNotFound), errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrBedNotFound), errors.Is(err, ErrImageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrActiveBookings), errors.Is(err, ErrRoomAtCapacity):
		return fiber.StatusConflict
	case errors.Is(err, storage.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNameRequired), errors.Is(err, ErrLabelRequired),
		errors.Is(err, ErrInvalidPropertyType), errors.Is(err, ErrInvalidGenderPolicy),
		errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidCapacity),
		errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInappropriateContent), errors.Is(err, ErrNoFiles):
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

// --- public ---

func (h *Handler) Search(c *fiber.Ctx) error {
	limit, offset := authctx.Paging(c)
	q := SearchQuery{
		City:         c.Query("city"),
		PropertyType: c.Query("property_type"),
		GenderPolicy: c.Query("gender_policy"),
		MinPrice:     c.QueryFloat("min_price", 0),
		MaxPrice:     c.QueryFloat("max_price", 0),
		Text:         c.Query("q"),
		Sort:         c.Query("sort", SortNewest),
		Limit:        limit,
		Offset:       offset,
	}
	result, err := h.service.Search(c.UserContext(), q)
	if err != nil {
		return fail(c, err, "Failed to search properties")
	}
	return c.JSON(result)
}

func (h *Handler) GetPublic(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	p, err := h.service.GetPublic(id)
	if err != nil {
		return fail(c, err, "Failed to load property")
	}
	return c.JSON(p)
}

// --- landlord ---

func (h *Handler) ListMine(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	limit, offset := authctx.Paging(c)
	items, total, err := h.service.ListMine(landlordID, c.Query("status"), limit, offset)
	if err != nil {
		return fail(c, err, "Failed to fetch properties")
	}
	return c.JSON(dto.ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var in PropertyInput
	if err := c.BodyParser(&in); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p, err := h.service.CreateProperty(c.UserContext(), landlordID, &in)
	if err != nil {
		return fail(c, err, "Failed to create property")
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) GetOwned(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	p, err := h.service.GetOwned(landlordID, id)
	if err != nil {
		return fail(c, err, "Failed to load property")
	}
	return c.JSON(p)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	var patch PropertyPatch
	if err := c.BodyParser(&patch); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p, err := h.service.UpdateProperty(c.UserContext(), landlordID, id, &patch)
	if err != nil {
		return fail(c, err, "Failed to update property")
	}
	return c.JSON(p)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	if err := h.service.DeleteProperty(c.UserContext(), landlordID, id); err != nil {
		return fail(c, err, "Failed to delete property")
	}
	return c.JSON(dto.MessageResponse{Message: "Property deleted"})
}

func (h *Handler) CreateRoom(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	var in RoomInput
	if err := c.BodyParser(&in); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	room, err := h.service.CreateRoom(c.UserContext(), landlordID, id, &in)
	if err != nil {
		return fail(c, err, "Failed to create room")
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

func (h *Handler) UpdateRoom(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid room ID")
	}
	var patch RoomPatch
	if err := c.BodyParser(&patch); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	room, err := h.service.UpdateRoom(c.UserContext(), landlordID, id, &patch)
	if err != nil {
		return fail(c, err, "Failed to update room")
	}
	return c.JSON(room)
}

func (h *Handler) DeleteRoom(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid room ID")
	}
	if err := h.service.DeleteRoom(c.UserContext(), landlordID, id); err != nil {
		return fail(c, err, "Failed to delete room")
	}
	return c.JSON(dto.MessageResponse{Message: "Room deleted"})
}

func (h *Handler) CreateBed(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid room ID")
	}
	var in BedInput
	if err := c.BodyParser(&in); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	bed, err := h.service.CreateBed(c.UserContext(), landlordID, id, &in)
	if err != nil {
		return fail(c, err, "Failed to create bed")
	}
	return c.Status(fiber.StatusCreated).JSON(bed)
}

func (h *Handler) UpdateBed(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("bedId"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid bed ID")
	}
	var patch BedPatch
	if err := c.BodyParser(&patch); err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	bed, err := h.service.UpdateBed(c.UserContext(), landlordID, id, &patch)
	if err != nil {
		return fail(c, err, "Failed to update bed")
	}
	return c.JSON(bed)
}

func (h *Handler) DeleteBed(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("bedId"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid bed ID")
	}
	if err := h.service.DeleteBed(c.UserContext(), landlordID, id); err != nil {
		return fail(c, err, "Failed to delete bed")
	}
	return c.JSON(dto.MessageResponse{Message: "Bed deleted"})
}

// UploadImages accepts multipart "files" (or a single "file") plus a
// "category" field.
func (h *Handler) UploadImages(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid property ID")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Expected multipart form data")
	}
	files := append(form.File["files"], form.File["file"]...)
	category := ""
	if v := form.Value["category"]; len(v) > 0 {
		category = v[0]
	}

	images, err := h.service.AddImages(c.UserContext(), landlordID, id, category, files)
	if err != nil {
		return fail(c, err, "Failed to upload images")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"images": images})
}

func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	landlordID, err := authctx.GetUserID(c)
	if err != nil {
		return modules.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("imageId"))
	if err != nil {
		return modules.Fail(c, fiber.StatusBadRequest, "Invalid image ID")
	}
	if err := h.service.DeleteImage(c.UserContext(), landlordID, id); err != nil {
		return fail(c, err, "Failed to delete image")
	}
	return c.JSON(dto.MessageResponse{Message: "Image deleted"})
}
