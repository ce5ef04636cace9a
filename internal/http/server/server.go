// Package server assembles the fiber app: views, middleware and routes.
package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"venues/internal/config"
	"venues/internal/domain"
	"venues/internal/http/handlers"
	applog "venues/internal/log"
)

// Options toggles middleware that tests usually want off.
type Options struct {
	AccessLog      bool
	ReloadViews    bool
	DisableLimiter bool
}

func isAPI(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") }

// errorHandler logs the error and shows a friendly message without internals.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		msg = "Page not found"
	} else if code == fiber.StatusRequestEntityTooLarge {
		msg = "Upload too large"
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{
		"Message":    msg,
		"Categories": domain.Categories(),
	}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

func New(cfg config.Config, deps *handlers.Deps, opts Options) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(opts.ReloadViews)

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    cfg.MaxBodyBytes(),
		ErrorHandler: errorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New(helmet.Config{
		// listing pages load images from the same origin only
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; style-src 'self'",
	}))
	app.Use(handlers.LoadUser(deps.Auth))
	if cfg.RateLimit > 0 && !opts.DisableLimiter {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return strings.HasPrefix(p, "/static/") || strings.HasSuffix(p, "/image")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}))
	}
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		// API clients authenticate with bearer keys, not cookies.
		Next: isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{
				"Message":    "Security check failed. Please refresh and try again.",
				"Categories": domain.Categories(),
			})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok && tok != "" {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", cfg.StaticDir)

	// ---------- App handlers ----------
	deps.Register(app, cfg.APIKeys)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{
			"Message":    "Page not found",
			"Categories": domain.Categories(),
		})
	})
	return app
}
