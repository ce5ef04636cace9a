package handlers

import (
	"venues/internal/config"
	"venues/internal/domain"
	"venues/internal/repos"
	"venues/internal/services"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Dir   *services.Directory
	Auth  *services.AuthService
	Items []*ItemHandler
	Tags  *TagHandler
	Pages *PageHandler
	Admin *AdminHandler
	Login *AuthHandler
}

// NewDeps wires repositories, services and handlers. Items and tags live in
// Redis when cfg.StoreDriver is "redis" and rdb is set; accounts always use db.
func NewDeps(db *sqlx.DB, rdb *redis.Client, cfg config.Config) *Deps {
	open := func(c domain.Category) services.ItemStore { return repos.NewItemRepo(db, c) }
	var tags services.TagStore = repos.NewTagRepo(db)
	if cfg.StoreDriver == "redis" && rdb != nil {
		open = func(c domain.Category) services.ItemStore { return repos.NewRedisItemRepo(rdb, c) }
		tags = repos.NewRedisTagRepo(rdb)
	}
	dir := services.NewDirectory(open, tags)
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}

	d := &Deps{
		Dir:   dir,
		Auth:  authSvc,
		Tags:  &TagHandler{Tags: tags},
		Pages: &PageHandler{Dir: dir},
		Admin: &AdminHandler{Dir: dir},
		Login: &AuthHandler{Auth: authSvc},
	}
	for _, svc := range dir.All() {
		d.Items = append(d.Items, &ItemHandler{Items: svc})
	}
	return d
}
