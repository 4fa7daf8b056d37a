// Package admin covers user management and listing approval.
package admin

import (
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/boardinghub/boardinghub-api/internal/modules/listings"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	Service *Service
	handler *Handler
}

func New(d *modules.Deps, listingSvc *listings.Service) *Module {
	svc := NewService(d.DB, listingSvc, d.Listings, d.Notifications, d.Audit)
	return &Module{Service: svc, handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "admin" }

// RegisterRoutes is empty: every admin route sits behind AdminRequired.
func (m *Module) RegisterRoutes(modules.Routers) {}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	h := m.handler
	router.Get("/users", h.ListUsers)
	router.Get("/users/:id", h.GetUser)
	router.Put("/users/:id/status", h.SetUserStatus)
	router.Put("/users/:id/role", h.SetUserRole)
	router.Delete("/users/:id", h.DeleteUser)

	router.Get("/properties", h.ListProperties)
	router.Put("/properties/:id/approve", h.ApproveProperty)
	router.Put("/properties/:id/reject", h.RejectProperty)
}
