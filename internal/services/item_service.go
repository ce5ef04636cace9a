package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"venues/internal/domain"
	"venues/internal/repos"
	"venues/internal/validate"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrInvalidItem  = errors.New("invalid item")
	ErrNotFound     = errors.New("item not found")
	ErrNoImage      = errors.New("item has no image")
)

// ItemStore persists the items of one category.
type ItemStore interface {
	Create(ctx context.Context, in domain.NewItem) (domain.Item, error)
	List(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, id int64) (domain.Item, error)
	Image(ctx context.Context, id int64) ([]byte, error)
	// Delete reports false when no item had the id.
	Delete(ctx context.Context, id int64) (bool, error)
}

type TagStore interface {
	List(ctx context.Context) ([]domain.Tag, error)
}

// ItemService is the item-management contract for a single category.
type ItemService struct {
	Category domain.Category
	Store    ItemStore
}

func NewItemService(cat domain.Category, store ItemStore) *ItemService {
	return &ItemService{Category: cat, Store: store}
}

func normalize(cat domain.Category, in domain.NewItem) domain.NewItem {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.DirectionLink = strings.TrimSpace(in.DirectionLink)
	in.OpenHours = strings.TrimSpace(in.OpenHours)
	if !cat.HasTags {
		in.Tags = nil
	}
	return in
}

// Create validates in and stores it. Image bytes are kept exactly as given.
func (s *ItemService) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	in = normalize(s.Category, in)
	if err := validate.Struct(in); err != nil {
		for _, f := range validate.FailedFields(err) {
			if f == "Name" {
				return domain.Item{}, ErrNameRequired
			}
		}
		return domain.Item{}, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return s.Store.Create(ctx, in)
}

func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	items, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (domain.Item, error) {
	it, err := s.Store.Get(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Item{}, ErrNotFound
	}
	return it, err
}

func (s *ItemService) Image(ctx context.Context, id int64) ([]byte, error) {
	img, err := s.Store.Image(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, ErrNoImage
	}
	return img, nil
}

func (s *ItemService) Delete(ctx context.Context, id int64) error {
	ok, err := s.Store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
