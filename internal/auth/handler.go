package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes OTP endpoints over HTTP.
type Handler struct {
	otp *OTPService
}

// NewHandler builds an auth HTTP handler.
func NewHandler(otp *OTPService) *Handler {
	return &Handler{otp: otp}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SendOTP handles POST /auth/send-otp.
func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "valid email required")
	}
	if err := h.otp.Send(c.Context(), email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "sent"})
}

// VerifyOTP handles POST /auth/verify-otp.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and code required")
	}
	if err := h.otp.Verify(c.Context(), email, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrOTPExpired):
			return fiber.NewError(fiber.StatusGone, err.Error())
		case errors.Is(err, ErrOTPMismatch):
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		default:
			return err
		}
	}
	return c.JSON(fiber.Map{"status": "verified"})
}
