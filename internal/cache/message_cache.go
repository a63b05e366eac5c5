package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamevault/chat-service/internal/domain"
)

// RedisMessageCache keeps a bounded recency window per conversation as a
// Redis list, newest entry at the head. It is an optimization only: the
// durable log is always able to reconstruct correct history without it.
type RedisMessageCache struct {
	cli    *redis.Client
	window int
	ttl    time.Duration
}

func NewRedisMessageCache(cli *redis.Client, window int, ttl time.Duration) *RedisMessageCache {
	return &RedisMessageCache{cli: cli, window: window, ttl: ttl}
}

func key(conversationID string) string { return "chat:" + conversationID + ":recent" }

// Recent returns up to limit cached messages, newest first. A missing key
// yields an empty slice, not an error.
func (c *RedisMessageCache) Recent(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		return []*domain.Message{}, nil
	}
	vals, err := c.cli.LRange(ctx, key(conversationID), 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return []*domain.Message{}, nil
		}
		return nil, err
	}
	out := make([]*domain.Message, 0, len(vals))
	for _, v := range vals {
		var m domain.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			// a corrupt entry poisons ordering; treat the window as cold
			return []*domain.Message{}, nil
		}
		out = append(out, &m)
	}
	return out, nil
}

// Push prepends one new message and trims the window.
func (c *RedisMessageCache) Push(ctx context.Context, m *domain.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	k := key(m.ConversationID)
	pipe := c.cli.TxPipeline()
	pipe.LPush(ctx, k, b)
	pipe.LTrim(ctx, k, 0, int64(c.window-1))
	pipe.Expire(ctx, k, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Seed replaces the window with a batch ordered newest first. Replacing the
// whole list keeps the operation idempotent: re-seeding the same batch never
// duplicates entries. Callers must not seed an empty batch.
func (c *RedisMessageCache) Seed(ctx context.Context, conversationID string, messages []*domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	vals := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	k := key(conversationID)
	pipe := c.cli.TxPipeline()
	pipe.Del(ctx, k)
	pipe.RPush(ctx, k, vals...)
	pipe.LTrim(ctx, k, 0, int64(c.window-1))
	pipe.Expire(ctx, k, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
