package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"venues/internal/domain"
)

type TagRepo struct{ db *sqlx.DB }

func NewTagRepo(db *sqlx.DB) *TagRepo { return &TagRepo{db: db} }

func (r *TagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	out := []domain.Tag{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, name FROM tags ORDER BY LOWER(name)`)
	return out, err
}
