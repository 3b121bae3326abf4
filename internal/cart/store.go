package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Store persists ledgers per cart session.
// Load returns an empty ledger for an unknown or expired session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Ledger, error)
	Save(ctx context.Context, sessionID string, ledger *Ledger) error
	Delete(ctx context.Context, sessionID string) error
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func decode(data []byte) (*Ledger, error) {
	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if ledger.Items == nil {
		ledger.Items = []LineItem{}
	}
	return &ledger, nil
}

// RedisStore keeps each session under its own key. Every read or write
// pushes the expiry forward by ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Ledger, error) {
	key := sessionKey(sessionID)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	ledger, err := decode(data)
	if err != nil {
		logger.Warn("Discarding unreadable cart session", logger.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return New(), nil
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		logger.Warn("Failed to refresh cart session ttl", logger.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	return ledger, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, ledger *Ledger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when redis is not configured.
// Ledgers are stored serialized so callers never share state.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return New(), nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return New(), nil
	}

	ledger, err := decode(entry.data)
	if err != nil {
		delete(s.entries, sessionID)
		return New(), nil
	}
	entry.expiresAt = s.now().Add(s.ttl)
	s.entries[sessionID] = entry
	return ledger, nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, ledger *Ledger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
