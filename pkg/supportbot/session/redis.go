package session

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each history as a redis list. Every mutation is a single
// list command, so redis itself orders appends and clears on a session.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var (
	_ Store  = &RedisStore{}
	_ Lister = &RedisStore{}
)

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, unavailable("invalid redis url", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable("failed to connect to redis", err)
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) turnsKey(sessionID string) string {
	return s.prefix + "session:" + sessionID + ":turns"
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "sessions"
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	turn, err := prepareTurn(sessionID, turn)
	if err != nil {
		return err
	}
	data, err := json.Marshal(turn)
	if err != nil {
		return unavailable("failed to encode turn", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.turnsKey(sessionID), data)
	pipe.SAdd(ctx, s.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("failed to append turn", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}
	items, err := s.client.LRange(ctx, s.turnsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, unavailable("failed to read history", err)
	}
	out := make([]Turn, 0, len(items))
	for _, item := range items {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, unavailable("corrupt turn in history", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.turnsKey(sessionID)).Err(); err != nil {
		return unavailable("failed to clear history", err)
	}
	return nil
}

func (s *RedisStore) Sessions(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, unavailable("failed to list sessions", err)
	}
	sort.Strings(ids)

	pipe := s.client.Pipeline()
	lens := make([]*redis.IntCmd, len(ids))
	lasts := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		lens[i] = pipe.LLen(ctx, s.turnsKey(id))
		lasts[i] = pipe.LIndex(ctx, s.turnsKey(id), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, unavailable("failed to list sessions", err)
	}

	out := make([]Summary, 0, len(ids))
	for i, id := range ids {
		sum := Summary{ID: id, Turns: int(lens[i].Val())}
		if raw, err := lasts[i].Result(); err == nil {
			var t Turn
			if json.Unmarshal([]byte(raw), &t) == nil {
				sum.UpdatedAt = t.CreatedAt
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
