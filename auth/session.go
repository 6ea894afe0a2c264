// auth/session.go
package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookhive/api/cache"
	logger "github.com/bookhive/api/logging"
)

// SessionStore binds exactly one live refresh session to each user. The
// cache is the source of truth here, not an optimization: a missing or
// unreadable entry means the presented refresh token is invalid.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a SessionStore. ttl should equal the refresh
// token TTL so a stored session can never outlive the token carrying it.
func NewSessionStore(c *cache.Cache, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: c, ttl: ttl}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

// StartSession generates a fresh session identifier and stores it as the
// single live session for the user, overwriting any previous one. Two
// concurrent logins race last-writer-wins; the losing session simply fails
// its next validation.
func (s *SessionStore) StartSession(ctx context.Context, userID string) string {
	sessionID := uuid.NewString()
	s.cache.Set(ctx, sessionKey(userID), sessionID, s.ttl)
	logger.Debug("Started refresh session", zap.String("userID", userID))
	return sessionID
}

// ValidateSession reports whether presented is the live session identifier
// for the user. Fails closed: an absent entry, an expired entry and a cache
// failure are all indistinguishable from "no session" and return false.
func (s *SessionStore) ValidateSession(ctx context.Context, userID, presented string) bool {
	stored, ok := s.cache.Get(ctx, sessionKey(userID))
	if !ok || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// EndSession deletes the user's live session. Used on logout and on
// rotation before a new session is started.
func (s *SessionStore) EndSession(ctx context.Context, userID string) {
	s.cache.Delete(ctx, sessionKey(userID))
	logger.Debug("Ended refresh session", zap.String("userID", userID))
}

// RotateSession invalidates the current session and starts a new one.
// Every successful refresh rotates, so a stolen refresh token is dead
// after its first legitimate use.
func (s *SessionStore) RotateSession(ctx context.Context, userID string) string {
	s.EndSession(ctx, userID)
	return s.StartSession(ctx, userID)
}
