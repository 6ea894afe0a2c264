package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookhive/api/audit"
	"github.com/bookhive/api/auth"
	"github.com/bookhive/api/cache"
	"github.com/bookhive/api/config"
	"github.com/bookhive/api/controller"
	"github.com/bookhive/api/dao"
	"github.com/bookhive/api/db"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/router"
	"github.com/bookhive/api/service"
	"github.com/bookhive/api/util"
)

func main() {
	// Initialize configuration. A token class without a signing secret is
	// fatal here: the service must not come up accepting forgeable tokens.
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger()
	defer logger.Sync()

	// Initialize database
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.CloseDB()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize the cache and the admin token class
	cacheService := cache.New(
		db.RedisClient,
		config.GetString("redis.keyPrefix"),
		config.GetDuration("redis.opTimeout"),
	)

	adminClass := config.TokenClass(auth.ClassAdmin)
	issuer, err := auth.NewIssuer(auth.ClassAdmin, adminClass)
	if err != nil {
		logger.Fatal("Failed to initialize token issuer", zap.Error(err))
	}
	sessionStore := auth.NewSessionStore(cacheService, adminClass.RefreshTTL)

	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Initialize DAOs
	userDAO := dao.NewUserDAO(db.DB)

	// Initialize services
	userService := service.NewUserService(
		userDAO,
		cacheService,
		config.GetDuration("redis.defaultCacheTTL"),
		eventBus,
	)
	authService := service.NewAuthService(
		userDAO,
		issuer,
		sessionStore,
		auditService,
		eventBus,
	)

	// Initialize controllers
	controllers := controller.InitializeControllers(authService, userService)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		controllers,
		issuer,
		userService,
		cacheService,
		eventBus,
		100, // 100 requests per minute
		time.Minute,
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
