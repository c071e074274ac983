package drive

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "storage_oauth_state:"

var ErrInvalidState = errors.New("oauth state is invalid or expired")

// StateStore binds one-time OAuth state nonces to the admin who started the flow.
type StateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStateStore(client *redis.Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{client: client, ttl: ttl}
}

func (s *StateStore) Save(ctx context.Context, state, adminID string) error {
	return s.client.Set(ctx, statePrefix+state, adminID, s.ttl).Err()
}

// Consume returns the admin bound to state and deletes it, so a state can be used once.
func (s *StateStore) Consume(ctx context.Context, state string) (string, error) {
	adminID, err := s.client.GetDel(ctx, statePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidState
		}
		return "", err
	}
	return adminID, nil
}
