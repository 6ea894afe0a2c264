// service/user_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookhive/api/cache"
	"github.com/bookhive/api/dao"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/model"
	"github.com/bookhive/api/util"
)

// IUserService defines the interface for user lookups
type IUserService interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error)
	UpdateUser(ctx context.Context, userID string, update model.UserUpdate) (*model.User, error)
}

// UserService serves user reads through the cache. The cache is an
// optimization here: any miss or failure falls back to the database.
type UserService struct {
	userDAO  *dao.UserDAO
	cache    *cache.Cache
	cacheTTL time.Duration
	eventBus *util.EventBus
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService
func NewUserService(userDAO *dao.UserDAO, cacheService *cache.Cache, cacheTTL time.Duration, eventBus *util.EventBus) *UserService {
	service := &UserService{
		userDAO:  userDAO,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		eventBus: eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe("user.updated", service.handleUserUpdated)
	eventBus.Subscribe("roles.changed", service.handleRolesChanged)

	return service
}

// handleUserUpdated drops the updated user's cache entries so the next read
// sees fresh data.
func (s *UserService) handleUserUpdated(ctx context.Context, event util.Event) error {
	user, ok := event.Payload.(*model.User)
	if !ok {
		return nil
	}
	logger.Info("User updated event received", zap.String("userID", user.ID))
	// Handlers run after the response may have been written; detach from
	// request cancellation so invalidation still happens.
	ctx = context.WithoutCancel(ctx)
	s.cache.Delete(ctx, userIDKey(user.ID), userEmailKey(user.Email))
	return nil
}

// handleRolesChanged invalidates every cached user aggregate. Role and
// permission edits happen outside this core, and a role edit changes the
// effective permissions of every user holding it.
func (s *UserService) handleRolesChanged(ctx context.Context, event util.Event) error {
	logger.Info("Roles changed event received, invalidating user caches")
	s.cache.DeletePattern(context.WithoutCancel(ctx), "user:*")
	return nil
}

func userIDKey(userID string) string {
	return "user:id:" + userID
}

func userEmailKey(email string) string {
	return "user:email:" + email
}

// GetUserByEmail returns the user with roles and permissions loaded,
// serving from cache when possible.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return cache.GetOrSet(ctx, s.cache, userEmailKey(email), s.cacheTTL, func(ctx context.Context) (*model.User, error) {
		return s.userDAO.GetUserByEmail(ctx, email)
	})
}

// GetUser returns the user by id, serving from cache when possible.
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return cache.GetOrSet(ctx, s.cache, userIDKey(userID), s.cacheTTL, func(ctx context.Context) (*model.User, error) {
		return s.userDAO.GetUser(ctx, userID)
	})
}

// ListUsers returns a page of users. Listing is not cached: pages are cheap
// and invalidating every page shape is not worth it.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return s.userDAO.ListUsers(ctx, limit, offset)
}

// UpdateUser applies the update and publishes user.updated so cache entries
// are invalidated.
func (s *UserService) UpdateUser(ctx context.Context, userID string, update model.UserUpdate) (*model.User, error) {
	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = update.Name
	if err := s.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, "user.updated", user)
	return user, nil
}
