package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/http/handlers"
	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Report)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	requireAuth := []fiber.Handler{cfg.AuthMiddleware.Handle, tagAccount}

	users := api.Group("/users", requireAuth...)
	users.Get("/me", cfg.Users.Me)
	users.Put("/me", cfg.Users.UpdateMe)
	users.Delete("/me", cfg.Users.DeleteMe)

	products := api.Group("/products", requireAuth...)
	products.Post("/", cfg.Products.Create)
	products.Get("/", cfg.Products.List)
	products.Get("/user", cfg.Products.ListMine)
	products.Get("/:id", cfg.Products.Get)
	products.Put("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)
}

// tagAccount exposes the caller's id to the request logger.
func tagAccount(c *fiber.Ctx) error {
	if account, ok := auth.AccountFromContext(c); ok {
		c.Locals(observability.AccountIDLocal, account.ID)
	}
	return c.Next()
}
