package middlewares_test

import (
	"net/http/httptest"
	"testing"

	"praxis-backend/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authApp() *fiber.App {
	app := fiber.New()
	app.Use(middlewares.IsAuthenticatedHeader())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user":   c.Locals("userID"),
			"branch": c.Locals("branchID"),
			"role":   c.Locals("role"),
		})
	})
	return app
}

func TestBearerTokenRoundtrip(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	token, err := middlewares.GenerateJWT("u1", "b1", "doctor")
	require.NoError(t, err)

	app := authApp()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMissingAuthorizationHeader(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	app := authApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	app := authApp()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
