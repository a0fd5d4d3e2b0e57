package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/auth"
)

// RegisterAuthRoutes wires OTP endpoints. Without a cache the endpoints
// answer 503 instead of panicking on a nil Redis client.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, cacheReady bool) {
	if !cacheReady {
		unavailable := func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusServiceUnavailable, "otp requires redis")
		}
		r.Post("/auth/send-otp", unavailable)
		r.Post("/auth/verify-otp", unavailable)
		return
	}
	r.Post("/auth/send-otp", h.SendOTP)
	r.Post("/auth/verify-otp", h.VerifyOTP)
}
