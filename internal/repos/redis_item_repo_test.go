package repos_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"venues/internal/domain"
	"venues/internal/repos"
)

// Runs against a live server only: REDIS_ADDR=localhost:6379 go test ./internal/repos
func TestRedisItemRepo(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := repos.OpenRedis(ctx, addr)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer client.Close()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	repo := repos.NewRedisItemRepo(client, domain.Food)
	it, err := repo.Create(ctx, domain.NewItem{Name: "Bagel Bar", Image: []byte{1, 2, 3}, Tags: []string{"Cafe", "Breakfast"}})
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != 1 || len(it.Tags) != 2 {
		t.Fatalf("created: %+v", it)
	}
	img, err := repo.Image(ctx, it.ID)
	if err != nil || string(img) != "\x01\x02\x03" {
		t.Fatalf("image: %v %v", img, err)
	}
	items, err := repo.List(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %d %v", len(items), err)
	}
	tags, err := repos.NewRedisTagRepo(client).List(ctx)
	if err != nil || len(tags) != 2 {
		t.Fatalf("tags: %+v %v", tags, err)
	}
	if ok, err := repo.Delete(ctx, it.ID); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, _ := repo.Delete(ctx, it.ID); ok {
		t.Fatal("second delete must report nothing removed")
	}
	if _, err := repo.Get(ctx, it.ID); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
