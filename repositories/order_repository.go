package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mercadito/models"

	"github.com/redis/go-redis/v9"
)

const orderKeyPrefix = "mm_last_order:"

// orderTTL bounds how long an unacknowledged order snapshot survives.
const orderTTL = 24 * time.Hour

// OrderStorage holds transient per-order snapshots, keyed by order id and
// deleted once the thank-you view acknowledges them.
type OrderStorage interface {
	Save(ctx context.Context, order models.Order) error
	Get(ctx context.Context, orderID string) (*models.Order, error)
	Delete(ctx context.Context, orderID string) error
}

type RedisOrderStorage struct {
	client *redis.Client
}

func NewRedisOrderStorage(client *redis.Client) *RedisOrderStorage {
	return &RedisOrderStorage{client: client}
}

func (s *RedisOrderStorage) Save(ctx context.Context, order models.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	if err := s.client.Set(ctx, orderKeyPrefix+order.OrderID, raw, orderTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisOrderStorage) Get(ctx context.Context, orderID string) (*models.Order, error) {
	raw, err := s.client.Get(ctx, orderKeyPrefix+orderID).Bytes()
	if err == redis.Nil {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, models.ErrNotFound
	}
	return &order, nil
}

func (s *RedisOrderStorage) Delete(ctx context.Context, orderID string) error {
	if err := s.client.Del(ctx, orderKeyPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

type MemoryOrderStorage struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func NewMemoryOrderStorage() *MemoryOrderStorage {
	return &MemoryOrderStorage{orders: make(map[string]models.Order)}
}

func (s *MemoryOrderStorage) Save(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.OrderID] = order
	return nil
}

func (s *MemoryOrderStorage) Get(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := order
	return &copied, nil
}

func (s *MemoryOrderStorage) Delete(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, orderID)
	return nil
}
