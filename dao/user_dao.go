// dao/user_dao.go
package dao

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	bookhive_errors "github.com/bookhive/api/errors"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/model"
)

// UserDAO loads users with their roles and direct permissions eagerly, so
// permission resolution downstream never touches the database.
type UserDAO struct {
	DB *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{DB: db}
}

func (dao *UserDAO) withAssociations() *gorm.DB {
	return dao.DB.
		Preload("Roles.Permissions").
		Preload("Permissions")
}

// GetUserByEmail fetches a user by email with roles and permissions loaded.
func (dao *UserDAO) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()

	var user model.User
	err := dao.withAssociations().WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bookhive_errors.ErrUserNotFound
	} else if err != nil {
		logger.Error("Failed to fetch user by email", zap.Error(err))
		return nil, bookhive_errors.ErrDatabaseOperation
	}

	logger.Debug("Fetched user by email",
		zap.String("userID", user.ID),
		zap.Duration("duration", time.Since(start)))
	return &user, nil
}

// GetUser fetches a user by id with roles and permissions loaded.
func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := dao.withAssociations().WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bookhive_errors.ErrUserNotFound
	} else if err != nil {
		logger.Error("Failed to fetch user", zap.Error(err), zap.String("userID", userID))
		return nil, bookhive_errors.ErrDatabaseOperation
	}
	return &user, nil
}

// ListUsers returns a page of users with roles and permissions loaded.
func (dao *UserDAO) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	var users []*model.User
	err := dao.withAssociations().WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to list users", zap.Error(err))
		return nil, bookhive_errors.ErrDatabaseOperation
	}
	return users, nil
}

// UpdateUser persists the mutable user fields.
func (dao *UserDAO) UpdateUser(ctx context.Context, user *model.User) error {
	result := dao.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to update user", zap.Error(result.Error), zap.String("userID", user.ID))
		return bookhive_errors.ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return bookhive_errors.ErrUserNotFound
	}
	return nil
}
