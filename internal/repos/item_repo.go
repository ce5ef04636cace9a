package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"venues/internal/domain"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("not found")

const itemColumns = `id, name, description, image, direction_link, open_hours, COALESCE(created_at,'') AS created_at`

// ItemRepo stores the items of one category in its own table.
type ItemRepo struct {
	db  *sqlx.DB
	cat domain.Category
}

func NewItemRepo(db *sqlx.DB, cat domain.Category) *ItemRepo {
	return &ItemRepo{db: db, cat: cat}
}

// joinTable and joinColumn name the tag link table, e.g. food_item_tags / food_item_id.
func (r *ItemRepo) joinTable() string {
	return strings.TrimSuffix(r.cat.Table, "s") + "_tags"
}

func (r *ItemRepo) joinColumn() string {
	return strings.TrimSuffix(r.cat.Table, "s") + "_id"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *ItemRepo) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Item{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var img any
	if len(in.Image) > 0 {
		img = in.Image
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO `+r.cat.Table+`(name, description, image, direction_link, open_hours)
		VALUES (?, ?, ?, ?, ?)
	`, in.Name, nullable(in.Description), img, nullable(in.DirectionLink), nullable(in.OpenHours))
	if err != nil {
		return domain.Item{}, fmt.Errorf("insert %s: %w", r.cat.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Item{}, err
	}

	if r.cat.HasTags {
		if err := r.attachTags(ctx, tx, id, in.Tags); err != nil {
			return domain.Item{}, err
		}
	}

	var it domain.Item
	if err := tx.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM `+r.cat.Table+` WHERE id = ?`, id); err != nil {
		return domain.Item{}, err
	}
	if r.cat.HasTags {
		tags, err := r.tagsFor(ctx, tx, []int64{id})
		if err != nil {
			return domain.Item{}, err
		}
		it.Tags = tags[id]
	}
	if err := tx.Commit(); err != nil {
		return domain.Item{}, err
	}
	return it, nil
}

func (r *ItemRepo) attachTags(ctx context.Context, tx *sqlx.Tx, itemID int64, names []string) error {
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags(name) VALUES(?)`, name); err != nil {
			return fmt.Errorf("insert tag %q: %w", name, err)
		}
		var tagID int64
		if err := tx.GetContext(ctx, &tagID, `SELECT id FROM tags WHERE LOWER(name) = LOWER(?)`, name); err != nil {
			return fmt.Errorf("lookup tag %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO `+r.joinTable()+`(`+r.joinColumn()+`, tag_id) VALUES(?, ?)
		`, itemID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

type taggedRow struct {
	ItemID int64 `db:"item_id"`
	domain.Tag
}

func (r *ItemRepo) tagsFor(ctx context.Context, q sqlx.QueryerContext, ids []int64) (map[int64][]domain.Tag, error) {
	out := map[int64][]domain.Tag{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
		SELECT j.`+r.joinColumn()+` AS item_id, t.id, t.name
		FROM `+r.joinTable()+` j
		JOIN tags t ON t.id = j.tag_id
		WHERE j.`+r.joinColumn()+` IN (?)
		ORDER BY t.name
	`, ids)
	if err != nil {
		return nil, err
	}
	var rows []taggedRow
	if err := sqlx.SelectContext(ctx, q, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ItemID] = append(out[row.ItemID], row.Tag)
	}
	return out, nil
}

// List returns every row in the table ordered by id.
func (r *ItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	var out []domain.Item
	if err := r.db.SelectContext(ctx, &out, `SELECT `+itemColumns+` FROM `+r.cat.Table+` ORDER BY id`); err != nil {
		return nil, err
	}
	if r.cat.HasTags && len(out) > 0 {
		ids := make([]int64, len(out))
		for i, it := range out {
			ids[i] = it.ID
		}
		tags, err := r.tagsFor(ctx, r.db, ids)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i].Tags = tags[out[i].ID]
		}
	}
	return out, nil
}

func (r *ItemRepo) Get(ctx context.Context, id int64) (domain.Item, error) {
	var it domain.Item
	err := r.db.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM `+r.cat.Table+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, err
	}
	if r.cat.HasTags {
		tags, err := r.tagsFor(ctx, r.db, []int64{id})
		if err != nil {
			return domain.Item{}, err
		}
		it.Tags = tags[id]
	}
	return it, nil
}

// Image returns the stored bytes, nil when the item has no image.
func (r *ItemRepo) Image(ctx context.Context, id int64) ([]byte, error) {
	var img []byte
	err := r.db.GetContext(ctx, &img, `SELECT image FROM `+r.cat.Table+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return img, err
}

// Delete removes the row in a single conditional statement and reports
// whether anything was deleted.
func (r *ItemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM `+r.cat.Table+` WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if r.cat.HasTags {
		// foreign_keys cascade covers this; kept for connections opened without the pragma
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+r.joinTable()+` WHERE `+r.joinColumn()+` = ?`, id); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}
