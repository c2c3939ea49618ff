package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Kiandes/P27-firecard/internal/model"
	"github.com/Kiandes/P27-firecard/internal/redis"
)

// AuthStateStore keeps pending authorization-code flows between the login
// redirect and the provider callback. States are single use: Consume removes
// the entry it returns.
type AuthStateStore interface {
	Create(ctx context.Context, state model.AuthState) error
	Consume(ctx context.Context, state string) (*model.AuthState, error)
}

type redisAuthStateStore struct {
	client *redis.Client
}

func NewRedisAuthStateStore(client *redis.Client) AuthStateStore {
	return &redisAuthStateStore{client: client}
}

func (s *redisAuthStateStore) Create(ctx context.Context, state model.AuthState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return errors.New("auth state already expired")
	}
	return s.client.Set(ctx, redis.AuthStateKey(state.State), data, ttl).Err()
}

func (s *redisAuthStateStore) Consume(ctx context.Context, state string) (*model.AuthState, error) {
	data, err := s.client.GetDel(ctx, redis.AuthStateKey(state)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pending model.AuthState
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

type memoryAuthStateStore struct {
	mu     sync.Mutex
	states map[string]model.AuthState
}

func NewMemoryAuthStateStore() AuthStateStore {
	return &memoryAuthStateStore{states: make(map[string]model.AuthState)}
}

func (s *memoryAuthStateStore) Create(ctx context.Context, state model.AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.State] = state
	return nil
}

func (s *memoryAuthStateStore) Consume(ctx context.Context, state string) (*model.AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.states[state]
	if !ok {
		return nil, nil
	}
	delete(s.states, state)
	if time.Now().After(pending.ExpiresAt) {
		return nil, nil
	}
	return &pending, nil
}
