package handlers

import (
	"errors"

	"venues/internal/domain"
	applog "venues/internal/log"
	"venues/internal/services"
	"venues/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Dir *services.Directory
}

type adminSection struct {
	Category domain.Category
	Items    []domain.Item
}

func (h *AdminHandler) dashboard(c *fiber.Ctx, status int, errMsg string) error {
	var sections []adminSection
	for _, svc := range h.Dir.All() {
		items, err := svc.List(c.UserContext())
		if err != nil {
			applog.Error(c, "admin.items.list.fail", err, map[string]any{"category": svc.Category.Slug})
			return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load venues"})
		}
		sections = append(sections, adminSection{Category: svc.Category, Items: items})
	}
	c.Status(status)
	return render(c, "admin", fiber.Map{"Sections": sections, "Err": errMsg})
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return h.dashboard(c, fiber.StatusOK, "")
}

func (h *AdminHandler) service(c *fiber.Ctx) (*services.ItemService, bool) {
	cat, ok := domain.CategoryBySlug(c.Params("category"))
	if !ok {
		return nil, false
	}
	c.Locals("category", cat.Slug)
	return h.Dir.Items(cat), true
}

// POST /admin/:category/items
func (h *AdminHandler) CreateItem(c *fiber.Ctx) error {
	svc, ok := h.service(c)
	if !ok {
		return notFound(c, "Unknown category")
	}
	in, err := readItemForm(c)
	if err != nil {
		applog.Error(c, "admin.items.create.read.fail", err, nil)
		return h.dashboard(c, fiber.StatusBadRequest, "Could not read the uploaded image")
	}
	it, err := svc.Create(c.UserContext(), in)
	switch {
	case errors.Is(err, services.ErrNameRequired):
		return h.dashboard(c, fiber.StatusBadRequest, "Name is required")
	case errors.Is(err, services.ErrInvalidItem):
		return h.dashboard(c, fiber.StatusBadRequest, "Please check the form fields")
	case err != nil:
		applog.Error(c, "admin.items.create.fail", err, nil)
		return h.dashboard(c, fiber.StatusInternalServerError, "Could not save venue")
	}
	applog.Audit(c, "admin.items.create", map[string]any{"id": it.ID, "name": it.Name})
	return c.Redirect("/admin")
}

// POST /admin/:category/items/:id/delete
func (h *AdminHandler) DeleteItem(c *fiber.Ctx) error {
	svc, ok := h.service(c)
	if !ok {
		return notFound(c, "Unknown category")
	}
	id, ok := validate.ItemID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("invalid id")
	}
	if err := svc.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return h.dashboard(c, fiber.StatusNotFound, "That venue was already removed")
		}
		applog.Error(c, "admin.items.delete.fail", err, map[string]any{"id": id})
		return h.dashboard(c, fiber.StatusInternalServerError, "Could not delete venue")
	}
	applog.Audit(c, "admin.items.delete", map[string]any{"id": id})
	return c.Redirect("/admin")
}
