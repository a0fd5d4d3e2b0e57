package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/identity"
)

// RegisterUserRoutes wires registration and login.
func RegisterUserRoutes(r fiber.Router, h *identity.Handler, rateLimiter fiber.Handler) {
	r.Post("/users/register", h.Register)
	r.Post("/users/login", rateLimiter, h.Login)
}
