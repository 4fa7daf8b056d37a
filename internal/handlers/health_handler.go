package handlers

import (
	"time"

	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/database"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	listings *cache.ListingCache
}

func NewHealthHandler(listings *cache.ListingCache) *HealthHandler {
	return &HealthHandler{listings: listings}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	cacheStatus := "disabled"
	if h.listings != nil {
		cacheStatus = h.listings.Status(c.UserContext())
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Cache:     cacheStatus,
	})
}
