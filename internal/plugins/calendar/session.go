package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists Widget state per client between requests.
type SessionStore interface {
	// Load returns the stored widget, or (nil, nil) if there is none.
	Load(ctx context.Context, id string) (*Widget, error)
	Save(ctx context.Context, id string, w Widget) error
	Delete(ctx context.Context, id string) error
}

// sessionKeyPrefix namespaces widget sessions in Redis.
const sessionKeyPrefix = "calview:widget:"

// redisSessionStore keeps widget state as JSON strings with a sliding TTL.
type redisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a Redis-backed SessionStore.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *redisSessionStore) Load(ctx context.Context, id string) (*Widget, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading widget session: %w", err)
	}

	var w Widget
	if err := json.Unmarshal(data, &w); err != nil {
		// A session written by an older build is dropped, not fatal.
		return nil, nil
	}
	return &w, nil
}

func (s *redisSessionStore) Save(ctx context.Context, id string, w Widget) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding widget session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving widget session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting widget session: %w", err)
	}
	return nil
}

// memoryEntry is a widget with its expiry.
type memoryEntry struct {
	widget  Widget
	expires time.Time
}

// memorySessionStore is the fallback when no Redis URL is configured.
// Expired entries are dropped lazily on access.
type memorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]memoryEntry
}

// NewMemorySessionStore creates an in-process SessionStore.
func NewMemorySessionStore(ttl time.Duration, clock Clock) SessionStore {
	return &memorySessionStore{ttl: ttl, clock: clock, entries: make(map[string]memoryEntry)}
}

func (s *memorySessionStore) Load(_ context.Context, id string) (*Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if !s.clock.Now().Before(e.expires) {
		delete(s.entries, id)
		return nil, nil
	}
	w := e.widget
	return &w, nil
}

func (s *memorySessionStore) Save(_ context.Context, id string, w Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{widget: w, expires: s.clock.Now().Add(s.ttl)}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}
