package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanizio/studentdesk/internal/metrics"
)

const keyPrefix = "studentdesk:session:"

// ErrNotFound is returned by a Backend when the key does not exist.
var ErrNotFound = errors.New("session: not found")

// Backend is the slice of a key/value server RedisStore needs.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) (int64, error)
}

// NewRedis opens a client and pings it once so a bad address fails at boot.
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RedisBackend adapts *redis.Client to Backend.
type RedisBackend struct{ C *redis.Client }

func (b RedisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.C.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (b RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return b.C.Set(ctx, key, value, ttl).Err()
}

func (b RedisBackend) Del(ctx context.Context, key string) (int64, error) {
	return b.C.Del(ctx, key).Result()
}

// RedisStore keeps the token server-side.  The browser only holds a random
// session ID, which is rotated on every Set.
type RedisStore struct {
	opts    Options
	backend Backend
}

func NewRedisStore(b Backend, opts Options) *RedisStore {
	return &RedisStore{opts: opts, backend: b}
}

func (s *RedisStore) id(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func (s *RedisStore) Get(r *http.Request) (string, bool) {
	id, ok := s.id(r)
	if !ok {
		return "", false
	}
	tok, err := s.backend.Get(r.Context(), keyPrefix+id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			zap.S().Warnw("session lookup failed", "err", err)
		}
		return "", false
	}
	return tok, tok != ""
}

func (s *RedisStore) Set(w http.ResponseWriter, r *http.Request, tok string) error {
	ctx := r.Context()
	if old, ok := s.id(r); ok {
		if n, err := s.backend.Del(ctx, keyPrefix+old); err == nil && n > 0 {
			metrics.SessionsActive.Dec()
		}
	}

	id := uuid.NewString()
	if err := s.backend.Set(ctx, keyPrefix+id, tok, s.opts.TTL); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}
	metrics.SessionsActive.Inc()
	http.SetCookie(w, s.opts.cookie(id))
	return nil
}

func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, s.opts.expired())
	id, ok := s.id(r)
	if !ok {
		return nil
	}
	n, err := s.backend.Del(r.Context(), keyPrefix+id)
	if err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	if n > 0 {
		metrics.SessionsActive.Dec()
	}
	return nil
}
