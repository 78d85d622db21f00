package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func jwtApp() (*fiber.App, *fiber.Map) {
	captured := &fiber.Map{}
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		*captured = fiber.Map{
			"user_id":    c.Locals("user_id"),
			"user_email": c.Locals("user_email"),
			"user_role":  c.Locals("user_role"),
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app, captured
}

func TestJWTProtectedBindsIdentity(t *testing.T) {
	app, captured := jwtApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub":   float64(42),
		"email": "  Asha@Example.com ",
		"role":  "Teacher",
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, uint(42), (*captured)["user_id"])
	require.Equal(t, "asha@example.com", (*captured)["user_email"])
	require.Equal(t, "teacher", (*captured)["user_role"])
}

func TestJWTProtectedAcceptsStringSubject(t *testing.T) {
	app, captured := jwtApp()
	token := signedToken(t, testSecret, jwt.MapClaims{"user_id": "7"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), (*captured)["user_id"])
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app, _ := jwtApp()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	app, _ := jwtApp()
	token := signedToken(t, "other-secret", jwt.MapClaims{"sub": float64(1)})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsMalformedHeader(t *testing.T) {
	app, _ := jwtApp()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
