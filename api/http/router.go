package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/colorfit/api/http/handlers"
)

// Routes groups the handlers and middleware Register mounts.
type Routes struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	History  *handlers.HistoryHandler
	Products *handlers.ProductsHandler
	Chat     *handlers.ChatHandler

	// RequireUser guards per-user routes.
	RequireUser fiber.Handler
	// AuthLimit throttles the public auth routes; nil disables it.
	AuthLimit fiber.Handler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", r.Health.Health)
	api.Get("/ready", r.Health.Ready)

	limit := r.AuthLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	a := api.Group("/auth", limit)
	a.Post("/send-otp", r.Auth.SendCode)
	a.Post("/signup", r.Auth.Register)
	a.Post("/login", r.Auth.Login)

	h := api.Group("/history", r.RequireUser)
	h.Post("/add", r.History.Add)
	h.Get("/all", r.History.List)
	h.Delete("/delete/:id", r.History.Delete)
	h.Get("/:id", r.History.Get)

	api.Get("/search", r.Products.Search)
	api.Post("/chat", r.Chat.Chat)
}
