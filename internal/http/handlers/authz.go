package handlers

import (
	"crypto/subtle"
	"strings"

	"venues/internal/domain"
	applog "venues/internal/log"
	"venues/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LoadUser attaches the signed-in user (if any) to Locals for templates and logs.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user": u.ID})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied", "Categories": domain.Categories()})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAPIKey guards write methods with "Authorization: Bearer <key>".
// With no keys configured every request passes.
func RequireAPIKey(keys []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(keys) == 0 || c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}
		const prefix = "Bearer "
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, prefix) {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="venues"`)
			applog.Security(c, "api.auth.missing", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(token), []byte(k)) == 1 {
				return c.Next()
			}
		}
		c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="venues", error="invalid_token"`)
		applog.Security(c, "api.auth.invalid", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
}
