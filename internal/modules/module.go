// Package modules holds the domain feature modules. Each module owns its
// service and handlers and mounts them on the role-scoped route groups.
package modules

import (
	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/events"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the shared components handed to every module.
type Deps struct {
	DB            *gorm.DB
	Config        *config.Config
	Storage       storage.Storage
	Listings      *cache.ListingCache
	Events        events.Publisher
	Notifications *services.NotificationService
	Audit         *services.AuditService
	Moderation    *services.ModerationService
	Settings      *services.SettingsService
	Profiles      *services.ProfileService
}

// Routers are the route groups a module may mount on. All are under /api.
type Routers struct {
	Public   fiber.Router // no authentication
	Tenant   fiber.Router // /tenant, tenant role
	Landlord fiber.Router // /landlord, landlord role
}

// Module is a domain feature mounted on the API.
type Module interface {
	// ID names the module in logs.
	ID() string

	// RegisterRoutes mounts the module's public and role-scoped routes.
	RegisterRoutes(r Routers)
}

// AdminModule extends Module with routes under /admin.
type AdminModule interface {
	Module

	// RegisterAdminRoutes mounts routes on a group that already has JWT and
	// admin middleware applied.
	RegisterAdminRoutes(router fiber.Router)
}

// Fail writes the standard error body.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}
