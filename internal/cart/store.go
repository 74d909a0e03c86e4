package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rightwater/orderdesk/internal/orders"
	"github.com/rightwater/orderdesk/internal/redisx"
)

// Store keeps one cart snapshot per user in Redis. The snapshot is what the
// storefront syncs between sessions; the client still sends the cart it is
// checking out with, so a missing snapshot is never fatal.
type Store struct{ RDB *redis.Client }

func (s *Store) Put(ctx context.Context, userID string, items []orders.Item) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyCart, userID)
	return s.RDB.Set(ctx, key, b, redisx.TTLCart).Err()
}

// Get returns an empty cart when no snapshot exists.
func (s *Store) Get(ctx context.Context, userID string) ([]orders.Item, error) {
	key := fmt.Sprintf(redisx.KeyCart, userID)
	b, err := s.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []orders.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.RDB.Del(ctx, fmt.Sprintf(redisx.KeyCart, userID)).Err()
}
