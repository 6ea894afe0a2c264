// service/user_service_test.go
package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhive/api/cache"
	"github.com/bookhive/api/model"
	"github.com/bookhive/api/service"
	"github.com/bookhive/api/util"
)

func newInvalidationFixture(t *testing.T) (*cache.Cache, *util.EventBus) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cacheService := cache.New(client, "bookhive", time.Second)
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	eventBus.Start(ctx)

	// The DAO is untouched by the invalidation handlers
	service.NewUserService(nil, cacheService, time.Minute, eventBus)

	return cacheService, eventBus
}

func TestUserUpdatedEventInvalidatesUserKeys(t *testing.T) {
	cacheService, eventBus := newInvalidationFixture(t)
	ctx := context.Background()

	cacheService.Set(ctx, "user:id:u1", "cached", time.Minute)
	cacheService.Set(ctx, "user:email:admin@bookhive.dev", "cached", time.Minute)
	cacheService.Set(ctx, "user:id:u2", "cached", time.Minute)

	eventBus.Publish(ctx, "user.updated", &model.User{ID: "u1", Email: "admin@bookhive.dev"})

	assert.Eventually(t, func() bool {
		_, idCached := cacheService.Get(ctx, "user:id:u1")
		_, emailCached := cacheService.Get(ctx, "user:email:admin@bookhive.dev")
		return !idCached && !emailCached
	}, time.Second, 10*time.Millisecond)

	// Other users stay cached
	_, ok := cacheService.Get(ctx, "user:id:u2")
	assert.True(t, ok)
}

func TestRolesChangedEventInvalidatesAllUserKeys(t *testing.T) {
	cacheService, eventBus := newInvalidationFixture(t)
	ctx := context.Background()

	cacheService.Set(ctx, "user:id:u1", "cached", time.Minute)
	cacheService.Set(ctx, "user:email:admin@bookhive.dev", "cached", time.Minute)
	cacheService.Set(ctx, "session:u1", "live", time.Minute)

	eventBus.Publish(ctx, "roles.changed", nil)

	assert.Eventually(t, func() bool {
		_, idCached := cacheService.Get(ctx, "user:id:u1")
		_, emailCached := cacheService.Get(ctx, "user:email:admin@bookhive.dev")
		return !idCached && !emailCached
	}, time.Second, 10*time.Millisecond)

	// Refresh sessions are not user cache entries and must survive
	_, ok := cacheService.Get(ctx, "session:u1")
	assert.True(t, ok)
}
