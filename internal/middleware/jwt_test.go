package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/auth"
	"github.com/rentloop/rentloop/internal/identity"
)

func setupRoleApp(t *testing.T) (*fiber.App, *auth.Service) {
	t.Helper()
	tokens := auth.NewService("test-secret", time.Hour)

	app := fiber.New()
	app.Post("/vehicles", JWTAuth(tokens), RequireRole(identity.RoleOwner), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	return app, tokens
}

func postVehicles(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/vehicles", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireRoleAdmitsOwner(t *testing.T) {
	app, tokens := setupRoleApp(t)

	token, err := tokens.Issue("user-1", "ada@example.com", identity.RoleOwner)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := postVehicles(t, app, token); got != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", got, fiber.StatusCreated)
	}
}

func TestRequireRoleRejectsCustomer(t *testing.T) {
	app, tokens := setupRoleApp(t)

	token, err := tokens.Issue("user-2", "bob@example.com", identity.RoleCustomer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := postVehicles(t, app, token); got != fiber.StatusForbidden {
		t.Fatalf("status = %d, want %d", got, fiber.StatusForbidden)
	}
}

func TestRequireRoleRejectsMissingToken(t *testing.T) {
	app, _ := setupRoleApp(t)

	if got := postVehicles(t, app, ""); got != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", got, fiber.StatusUnauthorized)
	}
}
