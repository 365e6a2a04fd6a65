package persist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "agent:session:"

// RedisStore keeps snapshots in redis with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, data []byte) error {
	err := r.rdb.Set(ctx, redisKeyPrefix+sessionID, data, r.ttl).Err()
	if err != nil && isRedisQuotaErr(err) {
		return ErrQuotaExceeded
	}
	return err
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+sessionID).Err()
}

// isRedisQuotaErr recognizes the maxmemory refusal.
func isRedisQuotaErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "OOM") || strings.Contains(msg, "maxmemory")
}
