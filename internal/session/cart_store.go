package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// PermanentTTL is the lifetime of a cart kept for a permanent session.
	PermanentTTL = 31 * 24 * time.Hour
	// TransientTTL bounds carts of sessions that were never marked permanent.
	TransientTTL = 24 * time.Hour
)

type CartStore interface {
	Get(ctx context.Context, sid string) (domain.Cart, error)
	Set(ctx context.Context, sid string, cart domain.Cart, permanent bool) error
	Delete(ctx context.Context, sid string) error
}

func NewRedisCartStore(client redis.UniversalClient) *RedisCartStore {
	return &RedisCartStore{client: client}
}

// RedisCartStore keeps each session's cart as a JSON list of product ids.
type RedisCartStore struct {
	client redis.UniversalClient
}

// Get returns an empty cart when nothing is stored for sid.
func (r *RedisCartStore) Get(ctx context.Context, sid string) (domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart, nil
}

func (r *RedisCartStore) Set(ctx context.Context, sid string, cart domain.Cart, permanent bool) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := TransientTTL
	if permanent {
		ttl = PermanentTTL
	}
	if err := r.client.Set(ctx, cartKey(sid), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartStore) Delete(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, cartKey(sid)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(sid string) string {
	return fmt.Sprintf("cart:%s", sid)
}
