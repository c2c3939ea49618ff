package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/redis"
)

// SessionObserver is notified after every session change. A nil session means
// the store was cleared (logout or refresh failure).
type SessionObserver func(session *model.Session)

// SessionStore holds the single live session, or none. Only the session
// manager writes to it; UI collaborators observe changes instead of reaching
// into the store directly.
type SessionStore interface {
	Get(ctx context.Context) (*model.Session, error)
	Put(ctx context.Context, session *model.Session) error
	Clear(ctx context.Context) error
	Subscribe(observer SessionObserver)
}

type redisSessionStore struct {
	client *redis.Client

	mu        sync.Mutex
	observers []SessionObserver
}

// NewRedisSessionStore persists the session in redis so it survives service
// restarts, matching the persisted session of the mobile client.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Get(ctx context.Context) (*model.Session, error) {
	data, err := s.client.Get(ctx, redis.SessionKey()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *redisSessionStore) Put(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redis.SessionKey(), data, 0).Err(); err != nil {
		return err
	}
	s.notify(session)
	return nil
}

func (s *redisSessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redis.SessionKey()).Err(); err != nil {
		return err
	}
	s.notify(nil)
	return nil
}

func (s *redisSessionStore) Subscribe(observer SessionObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *redisSessionStore) notify(session *model.Session) {
	s.mu.Lock()
	observers := make([]SessionObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		observer(session)
	}
}

type memorySessionStore struct {
	mu        sync.Mutex
	session   *model.Session
	observers []SessionObserver
}

// NewMemorySessionStore keeps the session in process memory. Used when no
// REDIS_URL is configured, and in tests.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{}
}

func (s *memorySessionStore) Get(ctx context.Context) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	return &copied, nil
}

func (s *memorySessionStore) Put(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	copied := *session
	s.session = &copied
	observers := make([]SessionObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		observer(session)
	}
	return nil
}

func (s *memorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.session = nil
	observers := make([]SessionObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		observer(nil)
	}
	return nil
}

func (s *memorySessionStore) Subscribe(observer SessionObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}
