// Package reviews handles tenant reviews of properties and their moderation.
package reviews

import (
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	Service *Service
	handler *Handler
}

func New(d *modules.Deps) *Module {
	svc := NewService(d.DB, d.Moderation, d.Notifications, d.Audit, d.Listings)
	return &Module{Service: svc, handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "reviews" }

func (m *Module) RegisterRoutes(r modules.Routers) {
	h := m.handler

	r.Public.Get("/properties/:id/reviews", h.ListForProperty)

	r.Tenant.Post("/reviews", h.Create)
	r.Tenant.Put("/reviews/:id", h.Update)
	r.Tenant.Delete("/reviews/:id", h.Delete)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/reviews", m.handler.AdminList)
	router.Put("/reviews/:id/status", m.handler.AdminSetStatus)
	router.Delete("/reviews/:id", m.handler.AdminDelete)
}
