package routes

import (
	"time"

	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/handlers"
	"github.com/boardinghub/boardinghub-api/internal/middleware"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Legal         *handlers.LegalHandler
	Moderation    *handlers.ModerationHandler
	Notifications *handlers.NotificationHandler
	Settings      *handlers.SettingsHandler
}

func perMinute(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, mods []modules.Module) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(perMinute(60))

	api.Get("/health", h.Health.Check)
	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)
	api.Get("/settings", h.Settings.GetSettings)

	// Auth: 10 req/min per IP
	auth := api.Group("/auth", perMinute(10))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/verify-email", h.Auth.VerifyEmail)
	auth.Post("/resend-verification", h.Auth.ResendVerification)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/password/forgot", h.Auth.ForgotPassword)
	auth.Post("/password/reset", h.Auth.ResetPassword)

	// JWT goes on individual routes here so public routes stay open.
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/me", jwt, h.Auth.Me)
	api.Put("/me", jwt, h.Auth.UpdateMe)
	api.Put("/me/password", jwt, h.Auth.ChangePassword)
	api.Delete("/me", jwt, h.Auth.DeleteAccount)

	notifications := api.Group("/notifications", jwt)
	notifications.Get("/", h.Notifications.List)
	notifications.Get("/unread-count", h.Notifications.UnreadCount)
	notifications.Put("/read-all", h.Notifications.MarkAllRead)
	notifications.Put("/:id/read", h.Notifications.MarkRead)
	notifications.Delete("/:id", h.Notifications.Delete)

	api.Post("/flags", jwt, h.Moderation.CreateFlag)

	r := modules.Routers{
		Public:   api,
		Tenant:   api.Group("/tenant", jwt, middleware.RoleRequired(models.RoleTenant)),
		Landlord: api.Group("/landlord", jwt, middleware.RoleRequired(models.RoleLandlord)),
	}

	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/flags", h.Moderation.ListFlags)
	admin.Put("/flags/:id", h.Moderation.ActionFlag)
	admin.Get("/audit", h.Moderation.ListAudit)
	admin.Put("/settings/:key", h.Settings.SetSetting)
	admin.Delete("/settings/:key", h.Settings.DeleteSetting)

	for _, m := range mods {
		m.RegisterRoutes(r)
		if am, ok := m.(modules.AdminModule); ok {
			am.RegisterAdminRoutes(admin)
		}
	}
}
