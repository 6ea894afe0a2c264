// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookhive/api/auth"
	"github.com/bookhive/api/cache"
	"github.com/bookhive/api/controller"
	"github.com/bookhive/api/middleware"
	"github.com/bookhive/api/service"
	"github.com/bookhive/api/util"
)

func SetupRouter(
	controllers *controller.Controllers,
	issuer *auth.Issuer,
	userService service.IUserService,
	cacheService *cache.Cache,
	eventBus *util.EventBus,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(cacheService, rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	// Unauthenticated endpoints
	controllers.Auth.RegisterPublicRoutes(api)

	// Everything below passes through the guard. Role and permission
	// requirements are declared here, next to the routes they protect.
	requirements := middleware.NewRequirementTable()
	requirements.Register("GET", "/api/v1/users/:id", middleware.Requirement{
		Roles:       []string{"admin", "superadmin"},
		Permissions: []string{"read_user"},
	})
	requirements.Register("GET", "/api/v1/users", middleware.Requirement{
		Permissions: []string{"list_user"},
	})
	requirements.Register("PUT", "/api/v1/users/:id", middleware.Requirement{
		Permissions: []string{"read_user", "update_user"},
	})

	protected := api.Group("")
	protected.Use(middleware.Guard(issuer, userService, requirements, eventBus))

	controllers.Auth.RegisterProtectedRoutes(protected)
	controllers.User.RegisterRoutes(protected)

	return router
}
