package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-mrz-scanner/document/mrz"
	redisutil "go-mrz-scanner/redis"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("scan session not found")

// Should be safe to use concurrently
type SessionStorage interface {
	// Stores the state of the scan session, overwriting any earlier state.
	StoreSession(ctx context.Context, sessionId string, state mrz.SessionState) error

	// Retrieves the state of the scan session. A missing session
	// returns an error wrapping ErrSessionNotFound.
	RetrieveSession(ctx context.Context, sessionId string) (mrz.SessionState, error)

	// Removes the scan session. The session not being there is an error.
	RemoveSession(ctx context.Context, sessionId string) error
}

// ------------------------------------------------------------------------------

type InMemorySessionStorage struct {
	sessions map[string]mrz.SessionState
	mutex    sync.Mutex
}

func NewInMemorySessionStorage() *InMemorySessionStorage {
	return &InMemorySessionStorage{
		sessions: make(map[string]mrz.SessionState),
	}
}

func copyState(state mrz.SessionState) mrz.SessionState {
	if state.Accepted != nil {
		state.Accepted = state.Accepted.Clone()
	}
	return state
}

func (s *InMemorySessionStorage) StoreSession(_ context.Context, sessionId string, state mrz.SessionState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sessions[sessionId] = copyState(state)
	return nil
}

func (s *InMemorySessionStorage) RetrieveSession(_ context.Context, sessionId string) (mrz.SessionState, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	state, ok := s.sessions[sessionId]
	if !ok {
		return mrz.SessionState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionId)
	}
	return copyState(state), nil
}

func (s *InMemorySessionStorage) RemoveSession(_ context.Context, sessionId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.sessions[sessionId]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionId)
	}
	delete(s.sessions, sessionId)
	return nil
}

// ------------------------------------------------------------------------------

// Scan sessions expire when the client stops sending frames.
const SessionTimeout time.Duration = 30 * time.Minute

type RedisSessionStorage struct {
	client    *redis.Client
	namespace string
}

func NewRedisSessionStorage(client *redis.Client, namespace string) *RedisSessionStorage {
	return &RedisSessionStorage{client: client, namespace: namespace}
}

func (s *RedisSessionStorage) key(sessionId string) string {
	return redisutil.Key(s.namespace, "session", sessionId)
}

func (s *RedisSessionStorage) StoreSession(ctx context.Context, sessionId string, state mrz.SessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	return s.client.Set(ctx, s.key(sessionId), payload, SessionTimeout).Err()
}

func (s *RedisSessionStorage) RetrieveSession(ctx context.Context, sessionId string) (mrz.SessionState, error) {
	payload, err := s.client.Get(ctx, s.key(sessionId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mrz.SessionState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionId)
	}
	if err != nil {
		return mrz.SessionState{}, err
	}

	var state mrz.SessionState
	if err := json.Unmarshal(payload, &state); err != nil {
		return mrz.SessionState{}, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return state, nil
}

func (s *RedisSessionStorage) RemoveSession(ctx context.Context, sessionId string) error {
	removed, err := s.client.Del(ctx, s.key(sessionId)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionId)
	}
	return nil
}
