package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/wallet"
)

// RegisterWalletRoutes wires the authenticated user's wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallet", h.Balance)
	r.Post("/wallet/topup", h.TopUp)
	r.Get("/wallet/history", h.History)
}
