// controller/auth_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	bookhive_errors "github.com/bookhive/api/errors"
	"github.com/bookhive/api/model"
	"github.com/bookhive/api/service"
	"github.com/bookhive/api/util"
)

type AuthController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// RegisterPublicRoutes registers the unauthenticated auth endpoints
func (ac *AuthController) RegisterPublicRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", ac.Login)
		auth.POST("/refresh", ac.Refresh)
	}
}

// RegisterProtectedRoutes registers the auth endpoints that require a valid token
func (ac *AuthController) RegisterProtectedRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/logout", ac.Logout)
		auth.GET("/me", ac.Me)
	}
}

// Login endpoint
func (ac *AuthController) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid login data", err)
		return
	}

	pair, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, bookhive_errors.ErrInvalidCredentials):
			util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		case errors.Is(err, bookhive_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to log in", bookhive_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh endpoint
func (ac *AuthController) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid refresh data", err)
		return
	}

	pair, err := ac.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, bookhive_errors.ErrMalformedToken),
			errors.Is(err, bookhive_errors.ErrInvalidToken),
			errors.Is(err, bookhive_errors.ErrExpiredToken),
			errors.Is(err, bookhive_errors.ErrSessionMismatch):
			// One generic response for every verification failure.
			util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		case errors.Is(err, bookhive_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to refresh tokens", bookhive_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout endpoint
func (ac *AuthController) Logout(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), userID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to log out", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me endpoint returns the authenticated user attached by the guard
func (ac *AuthController) Me(c *gin.Context) {
	user, err := util.GetUserFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
