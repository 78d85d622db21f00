package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/academe-go-api/internal/config"
	"github.com/noah-isme/academe-go-api/internal/handler"
	"github.com/noah-isme/academe-go-api/internal/middleware"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgressHandler     *handler.ProgressHandler
	TeacherHandler      *handler.TeacherHandler
	AdminTeacherHandler *handler.AdminTeacherHandler
	StudentHandler      *handler.StudentHandler
	JWTMiddleware       fiber.Handler
	RoleMiddleware      fiber.Handler
	RecommendationLimit int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	roleMiddleware := deps.RoleMiddleware
	if roleMiddleware == nil {
		roleMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware, roleMiddleware)
		progress.Use("/recommendations", middleware.RateLimit("recommendations", deps.RecommendationLimit, time.Minute))
		deps.ProgressHandler.Register(progress)
	}

	if deps.TeacherHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, roleMiddleware,
			middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.TeacherHandler.Register(teacher)
	}

	if deps.AdminTeacherHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, roleMiddleware,
			middleware.RequireRole(models.RoleAdmin))
		deps.AdminTeacherHandler.Register(admin)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware, roleMiddleware)
		deps.StudentHandler.Register(students)
	}
}
