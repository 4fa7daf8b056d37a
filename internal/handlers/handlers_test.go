package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/authctx"
	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asUser(id uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(authctx.LocalsKey, jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": id.String(), "role": "tenant",
		}))
		return c.Next()
	}
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func authApp() *fiber.App {
	h := NewAuthHandler(services.NewAuthService(nil, &config.Config{
		JWTSecret: "test-secret", JWTAccessExpiry: time.Minute, JWTRefreshExpiry: time.Hour,
	}, nil, nil))
	app := fiber.New()
	app.Post("/auth/register", h.Register)
	app.Post("/auth/verify-email", h.VerifyEmail)
	app.Get("/me", h.Me)
	app.Delete("/me", asUser(uuid.New()), h.DeleteAccount)
	return app
}

func TestRegisterRejectsBadInput(t *testing.T) {
	app := authApp()

	status, body := send(t, app, "POST", "/auth/register", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid request body")

	status, body = send(t, app, "POST", "/auth/register", `{"email":"nobody","password":"password1"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, services.ErrInvalidEmail.Error())

	status, body = send(t, app, "POST", "/auth/register", `{"email":"a@example.com","password":"short"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, services.ErrWeakPassword.Error())

	status, _ = send(t, app, "POST", "/auth/register", `{"email":"a@example.com","password":"password1","role":"admin"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestVerifyEmailNeedsCodeOrLink(t *testing.T) {
	status, body := send(t, authApp(), "POST", "/auth/verify-email", `{"email":"a@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "verification code or link")
}

func TestMeWithoutTokenIsUnauthorized(t *testing.T) {
	status, body := send(t, authApp(), "GET", "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, `"error":true`)
}

func TestDeleteAccountRequiresPassword(t *testing.T) {
	status, body := send(t, authApp(), "DELETE", "/me", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, services.ErrPasswordRequired.Error())
}

func TestCreateFlagValidation(t *testing.T) {
	h := NewModerationHandler(services.NewModerationService(nil), nil)
	app := fiber.New()
	app.Post("/flags", asUser(uuid.New()), h.CreateFlag)

	status, _ := send(t, app, "POST", "/flags", `{"content_type":"post","content_id":"`+uuid.NewString()+`","reason":"spam"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := send(t, app, "POST", "/flags", `{"content_type":"review","content_id":"abc","reason":"spam"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, services.ErrInvalidFlagID.Error())

	status, _ = send(t, app, "POST", "/flags", `{"content_type":"review","content_id":"`+uuid.NewString()+`","reason":"  "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLegalPagesFallBackWithoutSettings(t *testing.T) {
	h := NewLegalHandler(nil)
	app := fiber.New()
	app.Get("/legal/privacy", h.PrivacyPolicy)
	app.Get("/legal/terms", h.TermsOfService)

	for _, path := range []string{"/legal/privacy", "/legal/terms"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, string(body), "BoardingHub")
		assert.Contains(t, string(body), "support@boardinghub.app")
	}
}
