package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newApp(cfg *config.Config, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{JWTProtected(cfg)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/x", handlers...)
	return app
}

func do(t *testing.T, app *fiber.App, token string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestJWTProtected(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newApp(cfg)

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "garbage", nil))

	expired := signedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(-time.Minute).Unix()})
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, expired, nil))

	valid := signedToken(t, jwt.MapClaims{"sub": uuid.NewString()})
	assert.Equal(t, fiber.StatusOK, do(t, app, valid, nil))
}

func TestRoleRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newApp(cfg, RoleRequired("landlord"))

	landlord := signedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "role": "landlord"})
	tenant := signedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "role": "tenant"})

	assert.Equal(t, fiber.StatusOK, do(t, app, landlord, nil))
	assert.Equal(t, fiber.StatusForbidden, do(t, app, tenant, nil))
}

func TestAdminRequired(t *testing.T) {
	adminID := uuid.New()
	cfg := &config.Config{
		JWTSecret:    testSecret,
		AdminEmails:  "ops@boardinghub.app, ",
		AdminUserIDs: adminID.String(),
		AdminToken:   "s3cret",
	}
	app := newApp(cfg, AdminRequired(nil, cfg))

	byEmail := signedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "email": "ops@boardinghub.app"})
	byID := signedToken(t, jwt.MapClaims{"sub": adminID.String()})
	byRole := signedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "role": "admin"})
	plain := signedToken(t, jwt.MapClaims{"sub": uuid.NewString(), "role": "tenant"})

	assert.Equal(t, fiber.StatusOK, do(t, app, byEmail, nil))
	assert.Equal(t, fiber.StatusOK, do(t, app, byID, nil))
	assert.Equal(t, fiber.StatusOK, do(t, app, byRole, nil))
	assert.Equal(t, fiber.StatusForbidden, do(t, app, plain, nil))
	assert.Equal(t, fiber.StatusOK, do(t, app, plain, map[string]string{"X-Admin-Token": "s3cret"}))
}

func TestAdminRequiredTrustsUserRowOverClaim(t *testing.T) {
	db, mock := testutil.MockDB(t)
	cfg := &config.Config{JWTSecret: testSecret}
	app := newApp(cfg, AdminRequired(db, cfg))

	demotedID := uuid.New()
	demoted := signedToken(t, jwt.MapClaims{"sub": demotedID.String(), "role": "admin"})
	mock.ExpectQuery(`SELECT "id","role","status" FROM "app_users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).
			AddRow(demotedID.String(), "tenant", "active"))
	assert.Equal(t, fiber.StatusForbidden, do(t, app, demoted, nil))

	suspendedID := uuid.New()
	suspended := signedToken(t, jwt.MapClaims{"sub": suspendedID.String(), "role": "admin"})
	mock.ExpectQuery(`SELECT "id","role","status" FROM "app_users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).
			AddRow(suspendedID.String(), "admin", "suspended"))
	assert.Equal(t, fiber.StatusForbidden, do(t, app, suspended, nil))

	promotedID := uuid.New()
	promoted := signedToken(t, jwt.MapClaims{"sub": promotedID.String(), "role": "tenant"})
	mock.ExpectQuery(`SELECT "id","role","status" FROM "app_users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).
			AddRow(promotedID.String(), "admin", "active"))
	assert.Equal(t, fiber.StatusOK, do(t, app, promoted, nil))
}

func TestParseCSV(t *testing.T) {
	assert.Nil(t, parseCSV(""))
	assert.Equal(t, []string{"a", "b"}, parseCSV(" a, ,b "))
}
