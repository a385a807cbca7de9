package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/ticketsync/internal/model"
)

const deliveryKeyPrefix = "ticketsync:delivery:"

type redisDeliveryStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDeliveryStore keeps results for ttl. A zero ttl keeps them until
// evicted by redis.
func NewRedisDeliveryStore(client redis.UniversalClient, ttl time.Duration) DeliveryStore {
	return &redisDeliveryStore{client: client, ttl: ttl}
}

func (s *redisDeliveryStore) Get(ctx context.Context, deliveryID string) (*model.Result, error) {
	raw, err := s.client.Get(ctx, deliveryKey(deliveryID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading delivery %s: %w", deliveryID, err)
	}

	var result model.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding delivery %s: %w", deliveryID, err)
	}
	return &result, nil
}

func (s *redisDeliveryStore) Put(ctx context.Context, deliveryID string, result *model.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding delivery %s: %w", deliveryID, err)
	}
	if err := s.client.Set(ctx, deliveryKey(deliveryID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing delivery %s: %w", deliveryID, err)
	}
	return nil
}

func (s *redisDeliveryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func deliveryKey(deliveryID string) string {
	return deliveryKeyPrefix + deliveryID
}

type nopDeliveryStore struct{}

// NewNopDeliveryStore never finds a delivery and discards writes. It is used
// when redis is not configured.
func NewNopDeliveryStore() DeliveryStore {
	return nopDeliveryStore{}
}

func (nopDeliveryStore) Get(ctx context.Context, deliveryID string) (*model.Result, error) {
	return nil, ErrNotFound
}

func (nopDeliveryStore) Put(ctx context.Context, deliveryID string, result *model.Result) error {
	return nil
}

func (nopDeliveryStore) Ping(ctx context.Context) error {
	return errors.New("delivery store not configured")
}
