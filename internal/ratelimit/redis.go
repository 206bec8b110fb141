package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const redisKeyPrefix = "crewdesk:ratelimit:"

// RedisStore shares attempt windows across instances. Each key is a sorted
// set of attempt timestamps in microseconds.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func NewRedisClient(addr string, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func (store *RedisStore) CountRecent(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	redisKey := redisKeyPrefix + key
	pipe := store.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(now.Add(-window).UnixMicro(), 10))
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return int(count.Val()), nil
}

func (store *RedisStore) Add(ctx context.Context, key string, now time.Time, window time.Duration) error {
	redisKey := redisKeyPrefix + key
	pipe := store.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(now.Add(-window).UnixMicro(), 10))
	pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (store *RedisStore) Reset(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}
