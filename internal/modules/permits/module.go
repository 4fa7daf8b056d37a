// Package permits handles landlord profiles and the business permits that
// gate listing approval.
package permits

import (
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/gofiber/fiber/v2"
)

type Module struct {
	Service *Service
	handler *Handler
}

func New(d *modules.Deps) *Module {
	svc := NewService(d.DB, d.Storage, d.Profiles, d.Notifications, d.Audit, d.Config.MaxUploadBytes())
	return &Module{Service: svc, handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "permits" }

func (m *Module) RegisterRoutes(r modules.Routers) {
	r.Landlord.Get("/profile", m.handler.GetProfile)
	r.Landlord.Put("/profile", m.handler.UpdateProfile)
	r.Landlord.Get("/permits", m.handler.ListMine)
	r.Landlord.Post("/permits", m.handler.Upload)
	r.Landlord.Get("/permits/:id/file", m.handler.File)
}

func (m *Module) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/permits", m.handler.List)
	router.Get("/permits/:id/file", m.handler.AdminFile)
	router.Put("/permits/:id/review", m.handler.Review)
}
