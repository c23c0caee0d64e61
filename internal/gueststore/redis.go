package gueststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

const keyPrefix = "guestcart:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Store backed by Redis. Carts expire after ttl so
// abandoned guest sessions do not accumulate.
func NewRedis(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Load(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return items, nil
}

func (s *redisStore) Save(ctx context.Context, sessionID string, items []domain.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, keyPrefix+sessionID).Err()
}
