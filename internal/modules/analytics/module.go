// Package analytics computes landlord and platform statistics.
package analytics

import (
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	Service *Service
	handler *Handler
}

func New(d *modules.Deps) *Module {
	svc := NewService(d.DB)
	return &Module{Service: svc, handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "analytics" }

func (m *Module) RegisterRoutes(r modules.Routers) {
	r.Landlord.Get("/analytics", m.handler.Landlord)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/dashboard", m.handler.Dashboard)
}
