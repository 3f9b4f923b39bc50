package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vitrina-autos/internal/config"
	"vitrina-autos/internal/handler"
	"vitrina-autos/internal/middleware"
	"vitrina-autos/internal/processing"
	"vitrina-autos/internal/repository"
	"vitrina-autos/internal/service"
	"vitrina-autos/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := config.NewRedisClient(cfg)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Failed to connect to Redis, media listings will not be cached")
		redisClient = nil
	case redisClient == nil:
		log.Info().Msg("REDIS_URL not set, media listings will not be cached")
	default:
		defer redisClient.Close()
	}

	store := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err := store.EnsureDirectories(); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload directories")
	}

	pipeline := processing.NewPipeline(cfg.FFmpegPath, cfg.FFprobePath)

	repos := repository.NewRepositories(db)

	// Expired and revoked sessions are dead weight; sweep them on startup
	// and once a day after that.
	go func() {
		for {
			if err := repos.Session.DeleteExpired(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Failed to clean up expired sessions")
			}
			time.Sleep(24 * time.Hour)
		}
	}()

	services := service.NewServices(repos, redisClient, store, pipeline, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		// One batch is at most 10 files of 10 MB; leave headroom for the
		// multipart framing.
		BodyLimit: int(cfg.MaxUploadMB)*1024*1024*service.MaxFilesPerUpload + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	app.Static("/uploads", cfg.UploadDir)

	setupRoutes(app, handlers, services.Auth)

	log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService service.AuthService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	// The storefront reads the gallery without authenticating.
	v1.Get("/vehicles/:vehicleId/media", h.Media.ListByVehicle)

	auth := v1.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Post("/auth/register", middleware.RequireRole("admin"), h.Auth.Register)
	protected.Get("/users/me", h.Auth.Me)

	vehicleMedia := protected.Group("/vehicles/:vehicleId/media", middleware.RequireRole("staff"))
	vehicleMedia.Post("/", h.Media.Upload)
	vehicleMedia.Post("/reorder", h.Media.Reorder)
	vehicleMedia.Put("/:mediaId", h.Media.Update)
	vehicleMedia.Delete("/:mediaId", h.Media.Delete)

	media := protected.Group("/media", middleware.RequireRole("staff"))
	media.Get("/", h.Media.List)

	audit := protected.Group("/audit", middleware.RequireRole("staff"))
	audit.Get("/recent", h.Audit.GetRecentActivities)
	audit.Get("/:entityType/:entityId", h.Audit.GetEntityHistory)
}
