package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func resultKey(id uuid.UUID) string {
	return "generation:" + id.String()
}

// StoreResult keeps the encoded rows of a generation for ttl.
func (r *RedisRepository) StoreResult(ctx context.Context, id uuid.UUID, payload []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, resultKey(id), payload, ttl).Err()
}

// LoadResult returns nil, nil when the result has expired or never existed.
func (r *RedisRepository) LoadResult(ctx context.Context, id uuid.UUID) ([]byte, error) {
	payload, err := r.rdb.Get(ctx, resultKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *RedisRepository) DeleteResult(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, resultKey(id)).Err()
}
