package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"venues/internal/domain"
	applog "venues/internal/log"
	"venues/internal/services"
	"venues/internal/validate"
)

// ItemHandler serves /api/<category>_items for one category.
type ItemHandler struct {
	Items *services.ItemService
}

func (h *ItemHandler) cat(c *fiber.Ctx) domain.Category {
	c.Locals("category", h.Items.Category.Slug)
	return h.Items.Category
}

// readItemForm pulls item fields out of a multipart or urlencoded body.
// A missing or empty "image" file part means no image.
func readItemForm(c *fiber.Ctx) (domain.NewItem, error) {
	in := domain.NewItem{
		Name:          c.FormValue("name"),
		Description:   c.FormValue("description"),
		DirectionLink: c.FormValue("directionLink"),
		OpenHours:     c.FormValue("openHours"),
		Tags:          validate.TagNames(c.FormValue("tags")),
	}
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Size == 0 {
		return in, nil
	}
	f, err := fh.Open()
	if err != nil {
		return in, fmt.Errorf("open image part: %w", err)
	}
	defer f.Close()
	in.Image, err = io.ReadAll(f)
	if err != nil {
		return in, fmt.Errorf("read image part: %w", err)
	}
	return in, nil
}

// POST /api/<category>_items
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	cat := h.cat(c)
	in, err := readItemForm(c)
	if err != nil {
		applog.Error(c, "items.create.read.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not read image", "details": err.Error()})
	}
	it, err := h.Items.Create(c.UserContext(), in)
	switch {
	case errors.Is(err, services.ErrNameRequired):
		applog.Security(c, "validation.fail", map[string]any{"field": "name"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	case errors.Is(err, services.ErrInvalidItem):
		applog.Security(c, "validation.fail", map[string]any{"err": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + cat.Noun(), "details": err.Error()})
	case err != nil:
		applog.Error(c, "items.create.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to create " + cat.Noun(),
			"details": err.Error(),
		})
	}
	applog.Audit(c, "items.create", map[string]any{"id": it.ID, "image_bytes": len(it.Image)})
	return c.Status(fiber.StatusCreated).JSON(cat.View(it))
}

// GET /api/<category>_items
func (h *ItemHandler) List(c *fiber.Ctx) error {
	cat := h.cat(c)
	items, err := h.Items.List(c.UserContext())
	if err != nil {
		applog.Error(c, "items.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch " + cat.Noun() + "s"})
	}
	return c.JSON(cat.Views(items))
}

// GET /api/<category>_items/:id
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	cat := h.cat(c)
	id, ok := validate.ItemID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	it, err := h.Items.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": cat.Label + " item not found"})
	}
	if err != nil {
		applog.Error(c, "items.get.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch " + cat.Noun(), "details": err.Error()})
	}
	return c.JSON(cat.View(it))
}

// DELETE /api/<category>_items?id=
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	cat := h.cat(c)
	raw := c.Query("id")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID parameter is required"})
	}
	id, ok := validate.ItemID(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": raw})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	err := h.Items.Delete(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": cat.Label + " item not found"})
	}
	if err != nil {
		applog.Error(c, "items.delete.fail", err, map[string]any{"id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to delete " + cat.Noun(),
			"details": err.Error(),
		})
	}
	applog.Audit(c, "items.delete", map[string]any{"id": id})
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%s item with ID %d deleted successfully", cat.Label, id)})
}

// GET /api/<category>_items/image?id=
func (h *ItemHandler) Image(c *fiber.Ctx) error {
	h.cat(c)
	id, ok := validate.ItemID(c.Query("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	img, err := h.Items.Image(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrNoImage) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		applog.Error(c, "items.image.fail", err, map[string]any{"id": id})
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, mimetype.Detect(img).String())
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(img)
}

type TagHandler struct {
	Tags services.TagStore
}

// GET /api/tags
func (h *TagHandler) List(c *fiber.Ctx) error {
	tags, err := h.Tags.List(c.UserContext())
	if err != nil {
		applog.Error(c, "tags.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tags"})
	}
	return c.JSON(tags)
}
