package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/redis/go-redis/v9"
)

// Redis is the subset of the go-redis client the store needs.
type Redis interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps each session as one JSON value so token and user are
// written and removed together. The key expires with the access token.
type RedisStore struct {
	rdb        Redis
	prefix     string
	defaultTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewRedisStore(rdb Redis, prefix string, defaultTTL time.Duration, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisStore{
		rdb:        rdb,
		prefix:     prefix,
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *RedisStore) Save(ctx context.Context, key string, sess *entity.Session) error {
	data, err := encode(sess)
	if err != nil {
		return err
	}

	ttl := s.defaultTTL
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return ErrExpired
	}

	if err = s.rdb.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		s.logger.Error("Error saving session", slog.String("error", err.Error()))
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*entity.Session, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}

		s.logger.Error("Error loading session", slog.String("error", err.Error()))
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess, err := decode(data)
	if err != nil || !sess.Complete() || sess.Expired(s.now()) {
		s.logger.Warn("Discarding unusable session", slog.String("key", key))
		if delErr := s.Delete(ctx, key); delErr != nil {
			return nil, delErr
		}

		return nil, ErrNoSession
	}

	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		s.logger.Error("Error deleting session", slog.String("error", err.Error()))
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
