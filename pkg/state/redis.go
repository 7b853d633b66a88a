// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL keeps a stopped account's deadlines for a week.
	DefaultTTL = 7 * 24 * time.Hour
	// KeyPrefix is the prefix for all session snapshot keys
	KeyPrefix = "tomarket_harvester:session:"
)

// RedisStore implements Store using Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl means DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{client: client, ttl: ttl}
}

func makeKey(account string) string {
	return fmt.Sprintf("%s%s", KeyPrefix, account)
}

// Load retrieves the snapshot for an account. Missing keys yield an empty snapshot.
func (r *RedisStore) Load(ctx context.Context, account string) (*Snapshot, error) {
	key := makeKey(account)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		logrus.Debugf("no stored state for account %s, starting fresh", account)
		return &Snapshot{Cycles: make(map[string]CycleState)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if snap.Cycles == nil {
		snap.Cycles = make(map[string]CycleState)
	}

	return &snap, nil
}

// Save writes the snapshot with the store TTL.
func (r *RedisStore) Save(ctx context.Context, account string, snap *Snapshot) error {
	snap.UpdatedAt = time.Now()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := r.client.Set(ctx, makeKey(account), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}

	logrus.Debugf("saved state for account %s with TTL %v", account, r.ttl)
	return nil
}

// Delete removes the snapshot for an account.
func (r *RedisStore) Delete(ctx context.Context, account string) error {
	if err := r.client.Del(ctx, makeKey(account)).Err(); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	return nil
}
