package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"picklist/model"
)

// DefaultSnapshotKey is the Redis key used when none is configured.
const DefaultSnapshotKey = "picklist:snapshot"

// RedisSnapshot keeps the snapshot in one Redis key so several stations can
// start from the same rows.
type RedisSnapshot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSnapshot connects to addr and checks the connection.
func NewRedisSnapshot(addr, password string, db int, key string, ttl time.Duration) (*RedisSnapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for snapshot: %w", err)
	}
	return NewRedisSnapshotWithClient(client, key, ttl), nil
}

// NewRedisSnapshotWithClient uses an existing client.
func NewRedisSnapshotWithClient(client *redis.Client, key string, ttl time.Duration) *RedisSnapshot {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisSnapshot{client: client, key: key, ttl: ttl}
}

// Load returns nil rows when the key does not exist.
func (r *RedisSnapshot) Load(ctx context.Context) ([]model.InventoryItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var items []model.InventoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return items, nil
}

func (r *RedisSnapshot) Save(ctx context.Context, items []model.InventoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (r *RedisSnapshot) Close() error {
	return r.client.Close()
}
