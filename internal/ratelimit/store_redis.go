package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript counts a hit and starts the window on the first one. A key
// left without an expiry is given one so it cannot pin a client forever.
var windowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore is a fixed-window counter shared by every instance. The window
// opens on a key's first hit and the counter restarts once it expires.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	vals, err := windowScript.Run(ctx, s.client, []string{key}, limit.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("redis rate limit: unexpected reply %v", vals)
	}

	count := int(vals[0])
	remaining := time.Duration(vals[1]) * time.Millisecond
	if remaining <= 0 {
		remaining = limit.Window
	}
	now := time.Now()
	resetAt := now.Add(remaining)

	if count > limit.Requests {
		return &Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}
	return &Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - count,
		ResetAt:   resetAt,
	}, nil
}
