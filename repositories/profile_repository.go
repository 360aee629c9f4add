package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"mercadito/models"

	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "mm_user:"

// ProfileStorage holds the optional per-profile user record. Missing or
// malformed data reads as absent (nil), never as an error.
type ProfileStorage interface {
	Read(ctx context.Context, profile string) (*models.UserProfile, error)
	Write(ctx context.Context, profile string, user *models.UserProfile) error
}

type RedisProfileStorage struct {
	client *redis.Client
}

func NewRedisProfileStorage(client *redis.Client) *RedisProfileStorage {
	return &RedisProfileStorage{client: client}
}

func (s *RedisProfileStorage) Read(ctx context.Context, profile string) (*models.UserProfile, error) {
	raw, err := s.client.Get(ctx, profileKeyPrefix+profile).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	var user models.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil || user.Email == "" {
		return nil, nil
	}
	return &user, nil
}

func (s *RedisProfileStorage) Write(ctx context.Context, profile string, user *models.UserProfile) error {
	key := profileKeyPrefix + profile
	if user == nil {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
		}
		return nil
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

type MemoryProfileStorage struct {
	mu    sync.Mutex
	users map[string]models.UserProfile
}

func NewMemoryProfileStorage() *MemoryProfileStorage {
	return &MemoryProfileStorage{users: make(map[string]models.UserProfile)}
}

func (s *MemoryProfileStorage) Read(ctx context.Context, profile string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[profile]
	if !ok || user.Email == "" {
		return nil, nil
	}
	copied := user
	return &copied, nil
}

func (s *MemoryProfileStorage) Write(ctx context.Context, profile string, user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		delete(s.users, profile)
		return nil
	}
	s.users[profile] = *user
	return nil
}
