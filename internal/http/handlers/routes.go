package handlers

import (
	"time"

	applog "venues/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Register mounts pages, the JSON API and the admin console on app.
func (d *Deps) Register(app *fiber.App, apiKeys []string) {
	// Public pages
	app.Get("/", d.Pages.Home)
	for _, h := range d.Items {
		app.Get(h.Items.Category.PagePath, d.Pages.Listing(h.Items))
	}

	// API
	api := app.Group("/api", RequireAPIKey(apiKeys))
	api.Get("/tags", d.Tags.List)
	for _, h := range d.Items {
		base := "/" + h.Items.Category.Table
		api.Get(base+"/image", h.Image) // before /:id
		api.Get(base, h.List)
		api.Post(base, h.Create)
		api.Delete(base, h.Delete)
		api.Get(base+"/:id", h.Get)
	}

	// Auth routes (login throttled)
	app.Get("/login", d.Login.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.Login.Login)
	app.Post("/logout", d.Login.Logout)

	// Admin
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/", d.Admin.Dashboard)
	admin.Post("/:category/items", d.Admin.CreateItem)
	admin.Post("/:category/items/:id/delete", d.Admin.DeleteItem)
}
