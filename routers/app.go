// Package routers assembles the HTTP application.
package routers

import (
	"path/filepath"
	"time"

	"github.com/Umairanwarr/hadith-sub001/config"
	"github.com/Umairanwarr/hadith-sub001/database"
	"github.com/Umairanwarr/hadith-sub001/middleware"
	authRoutes "github.com/Umairanwarr/hadith-sub001/routers/authRoutes"
	courseRoutes "github.com/Umairanwarr/hadith-sub001/routers/courseRoutes"
	userProfileRoutes "github.com/Umairanwarr/hadith-sub001/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
)

// NewApp builds the fiber app with middleware and every route mounted under /api.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "hadith-university",
		BodyLimit:    20 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return middleware.JsonResponse(c, code, false, err.Error(), nil)
		},
	})

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CorsMiddleware(cfg.CorsOrigins))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if sqlDB, err := database.Database.Db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Service is running.", fiber.Map{
			"status": status,
			"time":   time.Now(),
		})
	})

	app.Static("/uploads", filepath.Join(cfg.CertificateDir, "backgrounds"))

	api := app.Group("/api")
	if cfg.RateLimitMax > 0 {
		api.Use(middleware.RateLimiter(cfg.RateLimitMax))
	}

	authRoutes.SetupAuthRoutes(api)
	userProfileRoutes.SetupUserRoutes(api)
	courseRoutes.SetupCourseRoutes(api)
	courseRoutes.SetupAdminCourseRoutes(api)

	return app
}
