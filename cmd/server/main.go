package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	jsoniter "github.com/json-iterator/go"

	"github.com/boardinghub/boardinghub-api/internal/cache"
	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/database"
	"github.com/boardinghub/boardinghub-api/internal/events"
	"github.com/boardinghub/boardinghub-api/internal/handlers"
	"github.com/boardinghub/boardinghub-api/internal/logging"
	"github.com/boardinghub/boardinghub-api/internal/mail"
	"github.com/boardinghub/boardinghub-api/internal/middleware"
	"github.com/boardinghub/boardinghub-api/internal/modules"
	"github.com/boardinghub/boardinghub-api/internal/modules/admin"
	"github.com/boardinghub/boardinghub-api/internal/modules/analytics"
	"github.com/boardinghub/boardinghub-api/internal/modules/bookings"
	"github.com/boardinghub/boardinghub-api/internal/modules/listings"
	"github.com/boardinghub/boardinghub-api/internal/modules/permits"
	"github.com/boardinghub/boardinghub-api/internal/modules/reports"
	"github.com/boardinghub/boardinghub-api/internal/modules/reviews"
	"github.com/boardinghub/boardinghub-api/internal/routes"
	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/boardinghub/boardinghub-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(logging.NewStdoutHandler(), pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// File storage
	store, err := storage.NewLocalStorage(cfg.StorageDir, cfg.StoragePublicPath)
	if err != nil {
		slog.Error("storage init failed", "dir", cfg.StorageDir, "error", err)
		os.Exit(1)
	}

	// Listing cache: ccache always, Redis when configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		slog.Info("listing cache using redis", "addr", cfg.RedisAddr)
	}
	listingCache := cache.NewListingCache(cfg.CacheMaxItems, cfg.CacheTTL, redisClient)

	// Listing events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			slog.Error("amqp publisher unavailable, events disabled", "error", err)
		} else {
			publisher = p
		}
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.MailAPIURL != "" {
		mailer = mail.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	}

	// Services
	settingsService := services.NewSettingsService(database.DB)
	if err := settingsService.SeedDefaults(); err != nil {
		slog.Error("seeding settings failed", "error", err)
	}
	profileService := services.NewProfileService(database.DB)
	authService := services.NewAuthService(database.DB, cfg, mailer, profileService)
	moderationService := services.NewModerationService(database.DB)
	notificationService := services.NewNotificationService(database.DB)
	auditService := services.NewAuditService(database.DB)

	deps := &modules.Deps{
		DB:            database.DB,
		Config:        cfg,
		Storage:       store,
		Listings:      listingCache,
		Events:        publisher,
		Notifications: notificationService,
		Audit:         auditService,
		Moderation:    moderationService,
		Settings:      settingsService,
		Profiles:      profileService,
	}
	listingsModule := listings.New(deps)
	mods := []modules.Module{
		listingsModule,
		permits.New(deps),
		bookings.New(deps),
		reviews.New(deps),
		analytics.New(deps),
		reports.New(deps),
		admin.New(deps, listingsModule.Service),
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Health:        handlers.NewHealthHandler(listingCache),
		Legal:         handlers.NewLegalHandler(settingsService),
		Moderation:    handlers.NewModerationHandler(moderationService, auditService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Settings:      handlers.NewSettingsHandler(settingsService, auditService),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Multipart uploads carry several images, so the body limit tracks the
	// per-file limit.
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxUploadBytes())*5 + 1024*1024,
		ErrorHandler: customErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Only listing photos are public; permit documents go through the API.
	app.Static(path.Join(cfg.StoragePublicPath, listings.ImageBucket),
		filepath.Join(cfg.StorageDir, listings.ImageBucket), fiber.Static{Browse: false})

	routes.Setup(app, cfg, database.DB, h, mods)
	for _, m := range mods {
		slog.Info("module registered", "module", m.ID())
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if err := publisher.Close(); err != nil {
		slog.Error("event publisher close error", "error", err)
	}
	if err := listingCache.Close(); err != nil {
		slog.Error("listing cache close error", "error", err)
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
