package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/classinsight/classinsight-api/internal/config"
	"github.com/classinsight/classinsight-api/internal/handler"
	"github.com/classinsight/classinsight-api/internal/middleware"
	"github.com/classinsight/classinsight-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler      *handler.EvaluationHandler
	AdminEvaluationHandler *handler.AdminEvaluationHandler
	JWTMiddleware          fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Public intake endpoint, rate limited per client IP
	if deps.EvaluationHandler != nil {
		evaluations := api.Group("/avaliacoes", middleware.RateLimit("avaliacoes", 30, time.Minute))
		deps.EvaluationHandler.Register(evaluations)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AdminEvaluationHandler != nil {
		admin := app.Group("/api/admin", jwtMiddleware)
		deps.AdminEvaluationHandler.Register(admin.Group("/avaliacoes"))
	}

	app.Get("/metrics", observability.MetricsHandler())
}
