package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/metrics"

	redis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "todos:"
	genKeyPrefix = "todos:gen:"
)

// errStaleFill aborts a Set whose generation was overtaken by a write
var errStaleFill = errors.New("todo cache fill is stale")

// RedisTodoCache caches one owner's todo list. It is fail-open: every redis
// error is logged and reported as a miss, so the store stays authoritative.
type RedisTodoCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr. It returns nil when addr is empty or the ping fails,
// and a nil *RedisTodoCache behaves as an always-empty cache.
func NewRedis(addr, password string, db int, ttl time.Duration) *RedisTodoCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, todo cache disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected", "addr", addr)
	return &RedisTodoCache{client: client, ttl: ttl}
}

func key(ownerID int64) string {
	return keyPrefix + strconv.FormatInt(ownerID, 10)
}

func genKey(ownerID int64) string {
	return genKeyPrefix + strconv.FormatInt(ownerID, 10)
}

// entry keeps the owner id, which Todo's JSON form hides
type entry struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *RedisTodoCache) Get(ctx context.Context, ownerID int64) ([]*domain.Todo, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.WithContext(ctx).Warn("todo cache get failed", "user_id", ownerID, "error", err)
		return nil, false
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}

	todos := make([]*domain.Todo, 0, len(entries))
	for _, e := range entries {
		todos = append(todos, &domain.Todo{
			ID:        e.ID,
			UserID:    ownerID,
			Text:      e.Text,
			Completed: e.Completed,
			CreatedAt: e.CreatedAt,
		})
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return todos, true
}

// Generation is the owner's invalidation counter, 0 before the first write.
// ok is false when redis cannot answer, and the caller must then skip Set.
func (c *RedisTodoCache) Generation(ctx context.Context, ownerID int64) (int64, bool) {
	if c == nil {
		return 0, false
	}
	gen, err := c.client.Get(ctx, genKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		logger.WithContext(ctx).Warn("todo cache generation read failed", "user_id", ownerID, "error", err)
		return 0, false
	}
	return gen, true
}

// Set stores todos only if the owner's generation is still gen. The check and
// the write run in one WATCH transaction, so an Invalidate in between wins.
func (c *RedisTodoCache) Set(ctx context.Context, ownerID, gen int64, todos []*domain.Todo) {
	if c == nil {
		return
	}
	entries := make([]entry, 0, len(todos))
	for _, t := range todos {
		entries = append(entries, entry{ID: t.ID, Text: t.Text, Completed: t.Completed, CreatedAt: t.CreatedAt})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}

	gk := genKey(ownerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(ownerID), raw, c.ttl)
			return nil
		})
		return err
	}, gk)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		logger.WithContext(ctx).Debug("dropping stale todo cache fill", "user_id", ownerID, "gen", gen)
	default:
		logger.WithContext(ctx).Warn("todo cache set failed", "user_id", ownerID, "error", err)
	}
}

// Invalidate bumps the generation and drops the cached list in one transaction
func (c *RedisTodoCache) Invalidate(ctx context.Context, ownerID int64) {
	if c == nil {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(ownerID))
		pipe.Del(ctx, key(ownerID))
		return nil
	})
	if err != nil {
		logger.WithContext(ctx).Warn("todo cache invalidate failed", "user_id", ownerID, "error", err)
	}
}

// Ping reports redis health for readiness checks
func (c *RedisTodoCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *RedisTodoCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
