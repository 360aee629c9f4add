package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"mercadito/models"

	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix     = "mm_cart:"
	cartChannelPrefix = "mm:cart:"
)

// CartStorage is the durable client storage analog: one cart value per
// profile key, write-then-broadcast so every other view attached to the
// same storage observes the change. Missing or corrupt data reads as an
// empty cart, never as an error; an unreachable backend surfaces
// models.ErrStorageUnavailable and callers degrade to in-memory state.
type CartStorage interface {
	Read(ctx context.Context, profile string) (models.Cart, error)
	Write(ctx context.Context, profile string, cart models.Cart) error
	// Subscribe delivers a signal per broadcast mutation of the profile's
	// cart until the returned stop func is called.
	Subscribe(ctx context.Context, profile string) (<-chan struct{}, func(), error)
}

type RedisCartStorage struct {
	client *redis.Client
}

func NewRedisCartStorage(client *redis.Client) *RedisCartStorage {
	return &RedisCartStorage{client: client}
}

func (s *RedisCartStorage) Read(ctx context.Context, profile string) (models.Cart, error) {
	raw, err := s.client.Get(ctx, cartKeyPrefix+profile).Bytes()
	if err == redis.Nil {
		return models.NewCart(), nil
	}
	if err != nil {
		return models.NewCart(), fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil || cart.LineItems == nil {
		// corrupt persisted data is tolerated as an empty cart
		return models.NewCart(), nil
	}
	return cart, nil
}

func (s *RedisCartStorage) Write(ctx context.Context, profile string, cart models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	if err := s.client.Set(ctx, cartKeyPrefix+profile, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	if err := s.client.Publish(ctx, cartChannelPrefix+profile, "updated").Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisCartStorage) Subscribe(ctx context.Context, profile string) (<-chan struct{}, func(), error) {
	ps := s.client.Subscribe(ctx, cartChannelPrefix+profile)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range ps.Channel() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, func() { ps.Close() }, nil
}

// MemoryCartStorage keeps carts in the process. It is the degraded mode
// when redis is down and the backend of choice in tests; broadcast only
// reaches subscribers in the same process.
type MemoryCartStorage struct {
	mu    sync.Mutex
	carts map[string][]byte
	subs  map[string][]chan struct{}
}

func NewMemoryCartStorage() *MemoryCartStorage {
	return &MemoryCartStorage{
		carts: make(map[string][]byte),
		subs:  make(map[string][]chan struct{}),
	}
}

func (s *MemoryCartStorage) Read(ctx context.Context, profile string) (models.Cart, error) {
	s.mu.Lock()
	raw, ok := s.carts[profile]
	s.mu.Unlock()
	if !ok {
		return models.NewCart(), nil
	}

	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil || cart.LineItems == nil {
		return models.NewCart(), nil
	}
	return cart, nil
}

func (s *MemoryCartStorage) Write(ctx context.Context, profile string, cart models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[profile] = raw
	for _, sub := range s.subs[profile] {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *MemoryCartStorage) Subscribe(ctx context.Context, profile string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[profile] = append(s.subs[profile], ch)
	s.mu.Unlock()

	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[profile]
		for i, sub := range subs {
			if sub == ch {
				s.subs[profile] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, stop, nil
}
