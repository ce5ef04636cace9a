package handlers

import (
	applog "venues/internal/log"
	"venues/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PageHandler struct {
	Dir *services.Directory
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	return render(c, "home", fiber.Map{})
}

// Listing renders every item of svc's category as a card, fetched fresh on each load.
func (h *PageHandler) Listing(svc *services.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat := svc.Category
		c.Locals("category", cat.Slug)
		items, err := svc.List(c.UserContext())
		if err != nil {
			applog.Error(c, "page.items.list.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Could not load " + cat.PageTitle + ". Please retry.",
			})
		}
		return render(c, "items", fiber.Map{
			"Title":     cat.PageTitle,
			"Category":  cat,
			"ImagePath": cat.ImagePath(),
			"Items":     items,
		})
	}
}
