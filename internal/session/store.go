// Package session keeps the single current refresh token per user in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoRecord means the store was reachable and holds nothing for the user.
var ErrNoRecord = errors.New("session record not found")

type Record struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}

type Store interface {
	Set(ctx context.Context, userID string, record Record, ttl time.Duration) error
	Get(ctx context.Context, userID string) (Record, error)
	Delete(ctx context.Context, userID string) error
}

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:refresh:"}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Set(ctx context.Context, userID string, record Record, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Record, error) {
	payload, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNoRecord
		}
		return Record{}, fmt.Errorf("redis get: %w", err)
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		// A value that is not a record can never match a presented token.
		return Record{Token: string(payload)}, nil
	}
	return record, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
