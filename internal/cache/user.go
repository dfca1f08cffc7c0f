package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avatarly/avatarly/internal/auth"
	"github.com/avatarly/avatarly/internal/model"
)

const (
	// userCachePrefix is the Redis key prefix for cached users.
	userCachePrefix = "user:email:"
	// UserCacheTTL is the time-to-live for cached users.
	UserCacheTTL = 10 * time.Minute
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// CachedUser represents a user stored in Redis.
// Only existing users are cached; records are immutable once created.
type CachedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          string    `json:"age"`
	Avatar       *string   `json:"avatar,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetUser retrieves a cached user by email.
// Returns ErrCacheMiss if not found or if the entry is corrupted.
func (c *Cache) GetUser(ctx context.Context, email string) (*model.User, error) {
	data, err := c.client.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	user, err := decodeUser(data)
	if err != nil {
		// Corrupted cache entry - treat as miss
		return nil, ErrCacheMiss
	}
	return user, nil
}

// SetUser caches a user under its email.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	data, err := encodeUser(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userKey(user.Email), data, UserCacheTTL).Err()
}

// userKey hashes the email so raw addresses never appear in key listings.
func userKey(email string) string {
	return userCachePrefix + auth.QuickHash(email)
}

func encodeUser(user *model.User) ([]byte, error) {
	data, err := json.Marshal(CachedUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Age:          user.Age,
		Avatar:       user.Avatar,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cached user: %w", err)
	}
	return data, nil
}

func decodeUser(data []byte) (*model.User, error) {
	var cached CachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cached user: %w", err)
	}
	if cached.ID == "" || cached.Email == "" {
		return nil, errors.New("incomplete cached user")
	}

	return &model.User{
		ID:           cached.ID,
		Name:         cached.Name,
		Email:        cached.Email,
		Age:          cached.Age,
		Avatar:       cached.Avatar,
		PasswordHash: cached.PasswordHash,
		CreatedAt:    cached.CreatedAt,
		UpdatedAt:    cached.UpdatedAt,
	}, nil
}
