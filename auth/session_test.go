// auth/session_test.go
package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhive/api/auth"
	"github.com/bookhive/api/cache"
)

func newTestSessionStore(t *testing.T, ttl time.Duration) (*auth.SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewSessionStore(cache.New(client, "bookhive", time.Second), ttl), mr
}

func TestStartAndValidateSession(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	sessionID := store.StartSession(ctx, "u1")
	require.NotEmpty(t, sessionID)

	assert.True(t, store.ValidateSession(ctx, "u1", sessionID))
	assert.False(t, store.ValidateSession(ctx, "u1", "some-other-id"))
	assert.False(t, store.ValidateSession(ctx, "u1", ""))
}

func TestSingleActiveSessionPerUser(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	first := store.StartSession(ctx, "u2")
	second := store.StartSession(ctx, "u2")

	// Only the most recent session is live
	assert.False(t, store.ValidateSession(ctx, "u2", first))
	assert.True(t, store.ValidateSession(ctx, "u2", second))
}

func TestSessionsAreScopedPerUser(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	s1 := store.StartSession(ctx, "u1")
	s2 := store.StartSession(ctx, "u2")

	assert.True(t, store.ValidateSession(ctx, "u1", s1))
	assert.True(t, store.ValidateSession(ctx, "u2", s2))
	assert.False(t, store.ValidateSession(ctx, "u1", s2))
	assert.False(t, store.ValidateSession(ctx, "u2", s1))
}

func TestEndSession(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	sessionID := store.StartSession(ctx, "u1")
	store.EndSession(ctx, "u1")

	assert.False(t, store.ValidateSession(ctx, "u1", sessionID))
}

func TestRotateSession(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	old := store.StartSession(ctx, "u1")
	rotated := store.RotateSession(ctx, "u1")

	assert.NotEqual(t, old, rotated)
	assert.False(t, store.ValidateSession(ctx, "u1", old))
	assert.True(t, store.ValidateSession(ctx, "u1", rotated))
}

func TestSessionExpiresWithTTL(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Minute)
	ctx := context.Background()

	sessionID := store.StartSession(ctx, "u1")
	mr.FastForward(2 * time.Minute)

	assert.False(t, store.ValidateSession(ctx, "u1", sessionID))
}

func TestValidateFailsClosedWhenBackendDown(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	sessionID := store.StartSession(ctx, "u1")
	mr.Close()

	// With the backend unreachable there is no way to tell a live session
	// from a rotated-out one, so validation must deny.
	assert.False(t, store.ValidateSession(ctx, "u1", sessionID))
}
