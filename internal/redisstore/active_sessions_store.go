package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chargenet/internal/authorizer"
	"chargenet/internal/types"
)

type activeSession struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Store mirrors live authorization sessions into redis for quick
// lookups by ops tooling. Best-effort: the engine logs failures and
// moves on.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a redis-backed active-session mirror.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(sessionID types.SessionID) string {
	return fmt.Sprintf("sessions:active:%s", sessionID)
}

// Save caches a session.
func (s *Store) Save(ctx context.Context, session authorizer.Session) error {
	data, err := json.Marshal(activeSession{
		SessionID: session.ID.String(),
		Token:     session.Token.String(),
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err()
}

// Delete drops a cached session. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, sessionID types.SessionID) error {
	err := s.client.Del(ctx, s.key(sessionID)).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
