package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

func TestRequireAPISessionAuthRejectsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/plan", RequireAPISessionAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"plan": "free_user"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plan", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
}

func TestRequireAPISessionAuthPassesLoggedIn(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyFromProtected, true)
		return c.Next()
	})
	app.Get("/api/v1/plan", RequireAPISessionAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"plan": "free_user"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plan", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	app := fiber.New()
	app.Get("/billing/checkout/success", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/billing/checkout/success", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
