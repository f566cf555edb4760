package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Krish-Depani/secure-auth/common"
	"github.com/Krish-Depani/secure-auth/models"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps server-side sessions keyed by an opaque token.
type SessionStore interface {
	SetSession(ctx context.Context, token string, session *models.UserSession, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*models.UserSession, error)
	DeleteSession(ctx context.Context, token string) error
}

type RedisClient struct {
	client *redis.Client
}

func GetRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{client: client}, nil
}

// Client exposes the underlying connection for other redis consumers.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) SetSession(ctx context.Context, token string, session *models.UserSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(token), payload, ttl).Err()
}

func (r *RedisClient) GetSession(ctx context.Context, token string) (*models.UserSession, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var session models.UserSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *RedisClient) DeleteSession(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// MemorySessionStore is an in-process SessionStore for development and tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	session   models.UserSession
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) SetSession(ctx context.Context, token string, session *models.UserSession, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = memorySession{session: *session, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) GetSession(ctx context.Context, token string) (*models.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, token)
		return nil, common.ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (m *MemorySessionStore) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
