package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

// InventoryKV adapts the go-redis client to the inventory.KV port, mapping
// redis.Nil onto found=false.
type InventoryKV struct{ RDB *redis.Client }

func (kv *InventoryKV) HGet(ctx context.Context, key, field string) (string, bool, error) {
	v, err := kv.RDB.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
