package services

import "venues/internal/domain"

// Directory groups the per-category item services with the shared tag store.
type Directory struct {
	items map[string]*ItemService
	Tags  TagStore
}

func NewDirectory(open func(domain.Category) ItemStore, tags TagStore) *Directory {
	d := &Directory{items: map[string]*ItemService{}, Tags: tags}
	for _, c := range domain.Categories() {
		d.items[c.Slug] = NewItemService(c, open(c))
	}
	return d
}

func (d *Directory) Items(cat domain.Category) *ItemService { return d.items[cat.Slug] }

// All returns the services in display order.
func (d *Directory) All() []*ItemService {
	out := make([]*ItemService, 0, len(d.items))
	for _, c := range domain.Categories() {
		out = append(out, d.items[c.Slug])
	}
	return out
}
