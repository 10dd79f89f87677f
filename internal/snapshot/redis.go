package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jeffreyvdb/dhgate-monitor/internal/models"
)

// RedisRepository stores each seller's snapshot as one hash keyed
// snapshot:<seller>, product id → JSON-encoded product. Save replaces the
// hash atomically inside a transaction pipeline.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(ctx context.Context, addr, password string, db int) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRepository{client: client}, nil
}

func (r *RedisRepository) Load(ctx context.Context, seller string) (models.Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key(seller)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %q: %w", seller, err)
	}

	snap := make(models.Snapshot, len(fields))
	for id, raw := range fields {
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("corrupt snapshot entry %s/%s: %w", seller, id, err)
		}
		snap[id] = p
	}

	return snap, nil
}

func (r *RedisRepository) Save(ctx context.Context, seller string, snap models.Snapshot) error {
	values := make(map[string]interface{}, len(snap))
	for id, p := range snap {
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		values[id] = raw
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(seller))
		if len(values) > 0 {
			pipe.HSet(ctx, r.key(seller), values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %q: %w", seller, err)
	}

	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) key(seller string) string {
	return "snapshot:" + seller
}
