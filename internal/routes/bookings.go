package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/booking"
)

// RegisterBookingRoutes wires rental settlement endpoints. Availability is
// public so renters can check a vehicle before signing in.
func RegisterBookingRoutes(public, protected fiber.Router, h *booking.Handler) {
	public.Get("/vehicles/:vehicleId/availability", h.Availability)

	protected.Post("/bookings", h.Purchase)
	protected.Post("/bookings/return", h.Return)
	protected.Get("/bookings", h.List)
}
