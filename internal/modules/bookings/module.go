// Package bookings covers booking requests from tenants and the landlord
// decisions on them.
package bookings

import "github.com/boardinghub/boardinghub-api/internal/modules"

type Module struct {
	Service *Service
	handler *Handler
}

func New(d *modules.Deps) *Module {
	svc := NewService(d.DB, d.Notifications, d.Settings)
	return &Module{Service: svc, handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "bookings" }

func (m *Module) RegisterRoutes(r modules.Routers) {
	h := m.handler

	r.Tenant.Post("/bookings", h.Create)
	r.Tenant.Get("/bookings", h.ListMine)
	r.Tenant.Put("/bookings/:id/cancel", h.Cancel)

	r.Landlord.Get("/bookings", h.ListForLandlord)
	r.Landlord.Put("/bookings/:id/approve", h.Approve)
	r.Landlord.Put("/bookings/:id/reject", h.Reject)
	r.Landlord.Put("/bookings/:id/complete", h.Complete)
}
