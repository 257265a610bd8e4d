package middleware

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"tidepool/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-sufficiently-long-test-secret-value"

func signToken(t *testing.T, secret string, userID uint, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupAuthApp(t *testing.T, handler fiber.Handler) *fiber.App {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/t", handler, func(c *fiber.Ctx) error {
		id, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"user_id": id})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := setupAuthApp(t, AuthRequired)

	t.Run("missing header rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/t", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signing key rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/t", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "some-other-secret-entirely-here", 7, time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/t", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 7, -time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token sets user", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/t", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 7, time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestOptionalAuth(t *testing.T) {
	app := setupAuthApp(t, OptionalAuth)

	t.Run("anonymous request passes", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("invalid token passes as anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/t", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("valid token resolves the viewer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/t", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 7, time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
