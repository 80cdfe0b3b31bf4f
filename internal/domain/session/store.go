// internal/domain/session/store.go
package session

import (
	"context"
	"time"

	redisdb "github.com/your-org/storefront-bff/internal/infrastructure/database/redis"
)

// Credentials are the locally cached auth material for one browser session
type Credentials struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// CredentialStore persists per-session credentials. Load returns
// (nil, nil) when no credentials are cached for the session.
type CredentialStore interface {
	Save(ctx context.Context, sessionID string, creds *Credentials, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*Credentials, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisCredentialStore keeps session credentials in Redis so a BFF
// restart does not log every browser out
type RedisCredentialStore struct {
	redis *redisdb.Client
}

// NewRedisCredentialStore creates a Redis-backed credential store
func NewRedisCredentialStore(client *redisdb.Client) *RedisCredentialStore {
	return &RedisCredentialStore{redis: client}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Save stores the session credentials with a TTL
func (s *RedisCredentialStore) Save(ctx context.Context, sessionID string, creds *Credentials, ttl time.Duration) error {
	return s.redis.SetJSON(ctx, sessionKey(sessionID), creds, ttl)
}

// Load retrieves the session credentials, nil when absent
func (s *RedisCredentialStore) Load(ctx context.Context, sessionID string) (*Credentials, error) {
	var creds Credentials
	if err := s.redis.GetJSON(ctx, sessionKey(sessionID), &creds); err != nil {
		if redisdb.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return &creds, nil
}

// Delete removes the session credentials
func (s *RedisCredentialStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Delete(ctx, sessionKey(sessionID))
}
