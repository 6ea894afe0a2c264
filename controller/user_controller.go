// controller/user_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	bookhive_errors "github.com/bookhive/api/errors"
	"github.com/bookhive/api/model"
	"github.com/bookhive/api/service"
	"github.com/bookhive/api/util"
	helper_util "github.com/bookhive/api/util/helper"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes for users
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/:id", uc.GetUser)
		users.GET("", uc.ListUsers)
		users.PUT("/:id", uc.UpdateUser)
	}
}

// GetUser endpoint
func (uc *UserController) GetUser(c *gin.Context) {
	userID := c.Param("id")

	user, err := uc.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, bookhive_errors.ErrUserNotFound):
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		case errors.Is(err, bookhive_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch user", bookhive_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers endpoint
func (uc *UserController) ListUsers(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	users, err := uc.userService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser endpoint
func (uc *UserController) UpdateUser(c *gin.Context) {
	userID := c.Param("id")
	var update model.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", bookhive_errors.ErrInvalidUserData)
		return
	}

	user, err := uc.userService.UpdateUser(c.Request.Context(), userID, update)
	if err != nil {
		switch {
		case errors.Is(err, bookhive_errors.ErrUserNotFound):
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		case errors.Is(err, bookhive_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update user", bookhive_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
