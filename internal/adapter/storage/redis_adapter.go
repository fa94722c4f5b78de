package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "stock:"

// Scripts keep clamp-at-zero atomic with the write so concurrent editors can
// never drive a count negative. Both return the value actually stored, which
// is what callers must treat as authoritative.
var setStockScript = redis.NewScript(`
local key = KEYS[1]
local value = tonumber(ARGV[1])

if value < 0 then
	value = 0
end

redis.call('SET', key, value)
return value
`)

var applyDeltaScript = redis.NewScript(`
local key = KEYS[1]
local delta = tonumber(ARGV[1])

local current = tonumber(redis.call('GET', key)) or 0
local next = current + delta
if next < 0 then
	next = 0
end

redis.call('SET', key, next)
return next
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID string, value int) (int, error) {
	key := stockKeyPrefix + itemID

	result, err := setStockScript.Run(ctx, r.client, []string{key}, value).Int()
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (r *RedisAdapter) ApplyDelta(ctx context.Context, itemID string, delta int) (int, error) {
	key := stockKeyPrefix + itemID

	result, err := applyDeltaScript.Run(ctx, r.client, []string{key}, delta).Int()
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (r *RedisAdapter) GetStock(ctx context.Context, itemID string) (int, error) {
	key := stockKeyPrefix + itemID

	result, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return result, nil
}
