package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"venues/internal/domain"
	"venues/internal/http/handlers"
	"venues/internal/services"
)

// countingStore records how often storage is touched.
type countingStore struct {
	calls int
	items map[int64]domain.Item
}

func (s *countingStore) Create(_ context.Context, in domain.NewItem) (domain.Item, error) {
	s.calls++
	it := domain.Item{ID: int64(len(s.items) + 1), Name: in.Name, Image: in.Image}
	s.items[it.ID] = it
	return it, nil
}

func (s *countingStore) List(context.Context) ([]domain.Item, error) {
	s.calls++
	var out []domain.Item
	for _, it := range s.items {
		out = append(out, it)
	}
	return out, nil
}

func (s *countingStore) Get(_ context.Context, id int64) (domain.Item, error) {
	s.calls++
	it, ok := s.items[id]
	if !ok {
		return domain.Item{}, services.ErrNotFound
	}
	return it, nil
}

func (s *countingStore) Image(ctx context.Context, id int64) ([]byte, error) {
	it, err := s.Get(ctx, id)
	return it.Image, err
}

func (s *countingStore) Delete(_ context.Context, id int64) (bool, error) {
	s.calls++
	_, ok := s.items[id]
	delete(s.items, id)
	return ok, nil
}

func newItemApp(cat domain.Category) (*fiber.App, *countingStore) {
	store := &countingStore{items: map[int64]domain.Item{}}
	h := &handlers.ItemHandler{Items: services.NewItemService(cat, store)}
	app := fiber.New()
	base := cat.APIPath()
	app.Get(base+"/image", h.Image)
	app.Get(base, h.List)
	app.Post(base, h.Create)
	app.Delete(base, h.Delete)
	app.Get(base+"/:id", h.Get)
	return app, store
}

func TestBadIDNeverReachesStorage(t *testing.T) {
	app, store := newItemApp(domain.Leisure)
	for _, target := range []string{
		"/api/leisure_items?id=abc",
		"/api/leisure_items?id=1.5",
		"/api/leisure_items",
	} {
		resp, err := app.Test(httptest.NewRequest("DELETE", target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", target, resp.StatusCode)
		}
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/api/leisure_items/image?id=x", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("image: want 400, got %d", resp.StatusCode)
	}
	if store.calls != 0 {
		t.Fatalf("storage touched %d times", store.calls)
	}
}

func TestZeroAndNegativeIDsAreNotFound(t *testing.T) {
	app, store := newItemApp(domain.Service)
	for _, target := range []string{"/api/service_items?id=0", "/api/service_items?id=-3"} {
		resp, err := app.Test(httptest.NewRequest("DELETE", target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: want 404, got %d", target, resp.StatusCode)
		}
	}
	if store.calls != 2 {
		t.Fatalf("want 2 storage calls, got %d", store.calls)
	}
}

func TestImageWithoutBytesIs404(t *testing.T) {
	app, store := newItemApp(domain.Food)
	store.items[1] = domain.Item{ID: 1, Name: "No Pic"}
	resp, err := app.Test(httptest.NewRequest("GET", "/api/food_items/image?id=1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}
