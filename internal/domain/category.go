package domain

import "strings"

// ImageEncoding selects how an item's image bytes are written in JSON.
type ImageEncoding int

const (
	// ImageBase64 uses encoding/json's default []byte form.
	ImageBase64 ImageEncoding = iota
	// ImageByteArray writes the image as a plain array of byte values.
	ImageByteArray
)

// Category describes one venue table. All item handling is parameterized by it.
type Category struct {
	Slug      string // food | leisure | service
	Label     string // Food | Leisure | Service
	Table     string
	PagePath  string
	PageTitle string
	HasTags   bool
	Images    ImageEncoding
}

var (
	Food = Category{
		Slug: "food", Label: "Food", Table: "food_items",
		PagePath: "/food_places", PageTitle: "Food Places",
		HasTags: true, Images: ImageBase64,
	}
	Leisure = Category{
		Slug: "leisure", Label: "Leisure", Table: "leisure_items",
		PagePath: "/leisure_places", PageTitle: "Leisure Spots",
		Images: ImageBase64,
	}
	Service = Category{
		Slug: "service", Label: "Service", Table: "service_items",
		PagePath: "/service_places", PageTitle: "Services",
		Images: ImageByteArray,
	}
)

func Categories() []Category { return []Category{Food, Leisure, Service} }

// CategoryBySlug looks up a category by its slug, case-insensitively.
func CategoryBySlug(slug string) (Category, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, c := range Categories() {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// APIPath is the collection endpoint, e.g. /api/food_items.
func (c Category) APIPath() string { return "/api/" + c.Table }

// ImagePath is the per-item image endpoint used by pages.
func (c Category) ImagePath() string { return c.APIPath() + "/image" }

// Noun is the lower-case name used in messages ("leisure item").
func (c Category) Noun() string { return strings.ToLower(c.Label) + " item" }
