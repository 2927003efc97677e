package cacheutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/utpal74/track-my-tasks-api/oauth"
)

const statePrefix = "oauth:state:"

// StateStore keeps pending OAuth states in Redis so every API instance can
// complete a flow another one started.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Save(ctx context.Context, state, provider string, ttl time.Duration) error {
	if err := s.client.Set(ctx, statePrefix+state, provider, ttl).Err(); err != nil {
		return fmt.Errorf("could not save oauth state in Redis: %w", err)
	}
	return nil
}

// Take reads and deletes the state in one command.
func (s *StateStore) Take(ctx context.Context, state string) (string, error) {
	provider, err := s.client.GetDel(ctx, statePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", oauth.ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error checking oauth state: %w", err)
	}
	return provider, nil
}
