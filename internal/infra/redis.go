package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a go-redis client and checks connectivity within ctx.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return rdb, nil
}

// IDReserver holds public ids in redis with SETNX for the length of the
// transaction that inserts them.
type IDReserver struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIDReserver(rdb *redis.Client, ttl time.Duration) *IDReserver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IDReserver{rdb: rdb, ttl: ttl}
}

func reservationKey(id string) string { return "public_id:" + id }

// Reserve reports false when another creator already holds id.
func (r *IDReserver) Reserve(ctx context.Context, id string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, reservationKey(id), 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: reserve %s: %w", id, err)
	}
	return ok, nil
}

func (r *IDReserver) Release(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, reservationKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: release %s: %w", id, err)
	}
	return nil
}
