package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/models"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL matching the cookie
// lifetime.
type RedisStore struct {
	db  *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis and returns the production session store.
func NewRedisStore(ctx context.Context, cfg config.RedisConnection, ttl time.Duration) (*RedisStore, error) {
	const op = "sessions.NewRedisStore"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		Username:     cfg.User,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisStore{db: db, ttl: ttl}, nil
}

// Create starts a session for the user and returns the cookie token.
func (s *RedisStore) Create(ctx context.Context, userUID string) (string, error) {
	const op = "sessions.RedisStore.Create"

	token, err := generateToken(32)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sess := models.Session{
		UserUID:   userUID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Set(ctx, keyPrefix+token, raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Get returns the session for token, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, token string) (*models.Session, error) {
	const op = "sessions.RedisStore.Get"

	raw, err := s.db.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sess.Token = token
	return &sess, nil
}

// SaveUser caches the user record into the session, keeping the
// remaining TTL.
func (s *RedisStore) SaveUser(ctx context.Context, token string, user *models.User) error {
	const op = "sessions.RedisStore.SaveUser"

	sess, err := s.Get(ctx, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sess.User = user
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrNotFound
	}
	if err := s.db.Set(ctx, keyPrefix+token, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Destroy removes the session.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	const op = "sessions.RedisStore.Destroy"
	if err := s.db.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
