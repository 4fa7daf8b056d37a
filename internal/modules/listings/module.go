// Package listings manages properties, rooms, beds and their images, and
// serves the public property search.
package listings

import (
	"github.com/boardinghub/boardinghub-api/internal/modules"
)

type Module struct {
	Service *Service
	handler *Handler
}

func New(d *modules.Deps) *Module {
	svc := NewService(d.DB, d.Storage, d.Listings, d.Events, d.Moderation,
		d.Config.MaxUploadBytes(), d.Config.PlaceholderImageURL)
	return &Module{Service: svc, handler: NewHandler(svc)}
}

func (m *Module) ID() string { return "listings" }

func (m *Module) RegisterRoutes(r modules.Routers) {
	h := m.handler

	r.Public.Get("/properties", h.Search)
	r.Public.Get("/properties/:id", h.GetPublic)

	r.Landlord.Get("/properties", h.ListMine)
	r.Landlord.Post("/properties", h.Create)
	r.Landlord.Get("/properties/:id", h.GetOwned)
	r.Landlord.Put("/properties/:id", h.Update)
	r.Landlord.Delete("/properties/:id", h.Delete)

	r.Landlord.Post("/properties/:id/rooms", h.CreateRoom)
	r.Landlord.Put("/rooms/:roomId", h.UpdateRoom)
	r.Landlord.Delete("/rooms/:roomId", h.DeleteRoom)
	r.Landlord.Post("/rooms/:roomId/beds", h.CreateBed)
	r.Landlord.Put("/beds/:bedId", h.UpdateBed)
	r.Landlord.Delete("/beds/:bedId", h.DeleteBed)

	r.Landlord.Post("/properties/:id/images", h.UploadImages)
	r.Landlord.Delete("/images/:imageId", h.DeleteImage)
}
