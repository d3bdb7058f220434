package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/config"
	"github.com/rajpratham1/EduScheduler-sub001/internal/handler"
	"github.com/rajpratham1/EduScheduler-sub001/internal/middleware"
	"github.com/rajpratham1/EduScheduler-sub001/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssistHandler   *handler.AssistHandler
	ScheduleHandler *handler.ScheduleHandler
	CatalogHandler  *handler.CatalogHandler
	EventsHandler   *handler.EventsHandler
	JWTMiddleware   fiber.Handler
	DB              *gorm.DB
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Assistant pipeline: propose, apply, undo, history
	if deps.AssistHandler != nil {
		assist := app.Group("/api/v1/assist", jwtMiddleware, middleware.RequireRole("admin", "scheduler"))
		deps.AssistHandler.Register(assist)
	}

	// Timetable reads are open to any authenticated user, writes require a
	// scheduling role
	if deps.ScheduleHandler != nil {
		schedules := app.Group("/api/v1/schedules", jwtMiddleware, middleware.RequireRoleForWrites("admin", "scheduler"))
		deps.ScheduleHandler.Register(schedules)
	}

	// Reference data management
	if deps.CatalogHandler != nil {
		catalog := app.Group("/api/v1/catalog", jwtMiddleware, middleware.RequireRole("admin", "scheduler"))
		deps.CatalogHandler.Register(catalog)
	}

	// Schedule change feed
	if deps.EventsHandler != nil {
		events := app.Group("/api/v1/events", jwtMiddleware)
		deps.EventsHandler.Register(events)
	}
}
