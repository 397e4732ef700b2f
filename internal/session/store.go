package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error

	SavePending(ctx context.Context, p *PendingCheckout) error
	LoadPending(ctx context.Context, paymentRef string) (*PendingCheckout, error)
	DeletePending(ctx context.Context, paymentRef string) error
}

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func pendingKey(ref string) string {
	return "checkout:pending:" + ref
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	var s Session
	if err := r.get(ctx, sessionKey(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s.ID == "" {
		return errors.New("session id cannot be empty")
	}
	return r.set(ctx, sessionKey(s.ID), s)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

func (r *RedisStore) SavePending(ctx context.Context, p *PendingCheckout) error {
	if p.PaymentRef == "" {
		return errors.New("payment reference cannot be empty")
	}
	return r.set(ctx, pendingKey(p.PaymentRef), p)
}

func (r *RedisStore) LoadPending(ctx context.Context, paymentRef string) (*PendingCheckout, error) {
	var p PendingCheckout
	if err := r.get(ctx, pendingKey(paymentRef), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisStore) DeletePending(ctx context.Context, paymentRef string) error {
	if err := r.redis.Del(ctx, pendingKey(paymentRef)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending checkout %s: %w", paymentRef, err)
	}
	return nil
}

func (r *RedisStore) get(ctx context.Context, key string, dst any) error {
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps sessions in process. Values are stored encoded so callers
// never share state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	pending  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
		pending:  make(map[string][]byte),
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	var s Session
	if err := m.get(m.sessions, id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s.ID == "" {
		return errors.New("session id cannot be empty")
	}
	return m.set(m.sessions, s.ID, s)
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) SavePending(_ context.Context, p *PendingCheckout) error {
	if p.PaymentRef == "" {
		return errors.New("payment reference cannot be empty")
	}
	return m.set(m.pending, p.PaymentRef, p)
}

func (m *MemoryStore) LoadPending(_ context.Context, paymentRef string) (*PendingCheckout, error) {
	var p PendingCheckout
	if err := m.get(m.pending, paymentRef, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MemoryStore) DeletePending(_ context.Context, paymentRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, paymentRef)
	return nil
}

func (m *MemoryStore) get(from map[string][]byte, key string, dst any) error {
	m.mu.Lock()
	data, ok := from[key]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, dst)
}

func (m *MemoryStore) set(to map[string][]byte, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	to[key] = data
	m.mu.Unlock()
	return nil
}
