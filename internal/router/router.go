package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/formkit-api/internal/config"
	"github.com/noah-isme/formkit-api/internal/handler"
	"github.com/noah-isme/formkit-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	FormHandler       *handler.FormHandler
	ResponseHandler   *handler.ResponseHandler
	DashboardHandler  *handler.DashboardHandler
	PublicFormHandler *handler.PublicFormHandler
	HealthProbes      map[string]handler.HealthProbe
	// JWTMiddleware guards owner routes; OptionalJWTMiddleware identifies respondents when a token is sent.
	JWTMiddleware         fiber.Handler
	OptionalJWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middlewares, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	optionalJWT := deps.OptionalJWTMiddleware
	if optionalJWT == nil {
		optionalJWT = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Form builder and results
	if deps.FormHandler != nil || deps.ResponseHandler != nil {
		forms := api.Group("/forms", jwtMiddleware)
		if deps.ResponseHandler != nil {
			deps.ResponseHandler.Register(forms)
		}
		if deps.FormHandler != nil {
			deps.FormHandler.Register(forms)
		}
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}

	// Respondents
	if deps.PublicFormHandler != nil {
		public := api.Group("/public/forms", optionalJWT)
		deps.PublicFormHandler.Register(public)
	}
}
