package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/vehicle"
)

// RegisterVehicleRoutes wires the vehicle catalogue. Browsing is public,
// listing management requires a token with the owner role.
func RegisterVehicleRoutes(public, protected fiber.Router, h *vehicle.Handler, ownerOnly fiber.Handler) {
	public.Get("/vehicles", h.List)
	public.Get("/vehicles/available", h.ListAvailable)
	public.Get("/vehicles/:vehicleId", h.Get)

	protected.Post("/vehicles", ownerOnly, h.Add)
	protected.Delete("/vehicles/:vehicleId", ownerOnly, h.Delete)
	protected.Post("/vehicles/:vehicleId/images", ownerOnly, h.AttachImage)
}
