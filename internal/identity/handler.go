package identity

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

// Handler exposes identity endpoints over HTTP.
type Handler struct {
	svc    *Service
	tokens TokenIssuer
}

// NewHandler builds an identity HTTP handler.
func NewHandler(svc *Service, tokens TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// Register handles POST /users/register.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user, err := h.svc.Register(c.Context(), Credentials{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return mapError(err)
	}
	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  toUserResponse(user),
		"token": token,
	})
}

// Login handles POST /users/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user, err := h.svc.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapError(err)
	}
	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user":  toUserResponse(user),
		"token": token,
	})
}

// Me handles GET /me for the authenticated user.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.svc.Get(c.Context(), userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(toUserResponse(user))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
