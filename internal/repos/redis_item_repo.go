package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"venues/internal/domain"
)

// Redis key layout:
//
//	venues:<table>:seq     INCR counter for item ids
//	venues:<table>:ids     sorted set of ids (score = id)
//	venues:<table>:<id>    JSON record
//	venues:tags:seq        INCR counter for tag ids
//	venues:tags:index      hash lower(name) -> tag id
//	venues:tags:names      hash tag id -> display name
const redisPrefix = "venues:"

// redisItem is the stored JSON form; Image is base64 inside the record.
type redisItem struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Description   *string      `json:"description,omitempty"`
	Image         []byte       `json:"image,omitempty"`
	DirectionLink *string      `json:"direction_link,omitempty"`
	OpenHours     *string      `json:"open_hours,omitempty"`
	CreatedAt     string       `json:"created_at"`
	Tags          []domain.Tag `json:"tags,omitempty"`
}

func (ri redisItem) item() domain.Item {
	return domain.Item{
		ID: ri.ID, Name: ri.Name, Description: ri.Description, Image: ri.Image,
		DirectionLink: ri.DirectionLink, OpenHours: ri.OpenHours,
		CreatedAt: ri.CreatedAt, Tags: ri.Tags,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OpenRedis connects to addr and verifies the server answers PING.
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis (%s): %w", addr, err)
	}
	return client, nil
}

// RedisItemRepo is the Redis-backed item store for one category.
type RedisItemRepo struct {
	client *redis.Client
	cat    domain.Category
}

func NewRedisItemRepo(client *redis.Client, cat domain.Category) *RedisItemRepo {
	return &RedisItemRepo{client: client, cat: cat}
}

func (r *RedisItemRepo) key(parts ...string) string {
	return redisPrefix + r.cat.Table + ":" + strings.Join(parts, ":")
}

func (r *RedisItemRepo) Create(ctx context.Context, in domain.NewItem) (domain.Item, error) {
	id, err := r.client.Incr(ctx, r.key("seq")).Result()
	if err != nil {
		return domain.Item{}, fmt.Errorf("allocate %s id: %w", r.cat.Table, err)
	}
	rec := redisItem{
		ID:            id,
		Name:          in.Name,
		Description:   optional(in.Description),
		DirectionLink: optional(in.DirectionLink),
		OpenHours:     optional(in.OpenHours),
		CreatedAt:     time.Now().UTC().Format("2006-01-02 15:04:05"),
	}
	if len(in.Image) > 0 {
		rec.Image = in.Image
	}
	if r.cat.HasTags {
		for _, name := range in.Tags {
			tag, err := ensureRedisTag(ctx, r.client, name)
			if err != nil {
				return domain.Item{}, err
			}
			rec.Tags = append(rec.Tags, tag)
		}
		sort.Slice(rec.Tags, func(i, j int) bool { return rec.Tags[i].Name < rec.Tags[j].Name })
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.Item{}, err
	}
	idStr := strconv.FormatInt(id, 10)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(idStr), data, 0)
	pipe.ZAdd(ctx, r.key("ids"), &redis.Z{Score: float64(id), Member: idStr})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Item{}, err
	}
	return rec.item(), nil
}

func ensureRedisTag(ctx context.Context, client *redis.Client, name string) (domain.Tag, error) {
	index := redisPrefix + "tags:index"
	lower := strings.ToLower(name)
	for {
		idStr, err := client.HGet(ctx, index, lower).Result()
		if err == nil {
			id, _ := strconv.ParseInt(idStr, 10, 64)
			display, err := client.HGet(ctx, redisPrefix+"tags:names", idStr).Result()
			if err != nil && err != redis.Nil {
				return domain.Tag{}, err
			}
			if display == "" {
				display = name
			}
			return domain.Tag{ID: id, Name: display}, nil
		}
		if err != redis.Nil {
			return domain.Tag{}, err
		}
		id, err := client.Incr(ctx, redisPrefix+"tags:seq").Result()
		if err != nil {
			return domain.Tag{}, err
		}
		idStr = strconv.FormatInt(id, 10)
		if err := client.HSet(ctx, redisPrefix+"tags:names", idStr, name).Err(); err != nil {
			return domain.Tag{}, err
		}
		ok, err := client.HSetNX(ctx, index, lower, idStr).Result()
		if err != nil {
			return domain.Tag{}, err
		}
		if ok {
			return domain.Tag{ID: id, Name: name}, nil
		}
		// lost a race with another writer; drop our id and read theirs
		_ = client.HDel(ctx, redisPrefix+"tags:names", idStr).Err()
	}
}

func (r *RedisItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	ids, err := r.client.ZRange(ctx, r.key("ids"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Item{}, nil
	}
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, r.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var rec redisItem
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		items = append(items, rec.item())
	}
	return items, nil
}

func (r *RedisItemRepo) Get(ctx context.Context, id int64) (domain.Item, error) {
	data, err := r.client.Get(ctx, r.key(strconv.FormatInt(id, 10))).Bytes()
	if err == redis.Nil {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, err
	}
	var rec redisItem
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Item{}, err
	}
	return rec.item(), nil
}

func (r *RedisItemRepo) Image(ctx context.Context, id int64) ([]byte, error) {
	it, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return it.Image, nil
}

// Delete uses ZREM's count as the existence check, so concurrent deletes of
// the same id report success exactly once.
func (r *RedisItemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	idStr := strconv.FormatInt(id, 10)
	n, err := r.client.ZRem(ctx, r.key("ids"), idStr).Result()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	return true, r.client.Del(ctx, r.key(idStr)).Err()
}

// RedisTagRepo lists tags created by RedisItemRepo.
type RedisTagRepo struct{ client *redis.Client }

func NewRedisTagRepo(client *redis.Client) *RedisTagRepo { return &RedisTagRepo{client: client} }

func (r *RedisTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	names, err := r.client.HGetAll(ctx, redisPrefix+"tags:names").Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Tag, 0, len(names))
	for idStr, name := range names {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, domain.Tag{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}
