package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/auth"
	"github.com/utpal74/track-my-tasks-api/cacheutils"
	"github.com/utpal74/track-my-tasks-api/common"
	"github.com/utpal74/track-my-tasks-api/config"
	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/handlers"
	"github.com/utpal74/track-my-tasks-api/logger"
	"github.com/utpal74/track-my-tasks-api/oauth"
	"github.com/utpal74/track-my-tasks-api/routes"
	"github.com/utpal74/track-my-tasks-api/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, zapLogger)

	// Create a new context with a timeout for connecting to the datastores
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := db.Open(connectCtx, cfg.DatabaseURL)
	common.FailOnError(ctx, "failed to open database", err)

	states, closeStates := newStateStore(connectCtx, cfg)
	defer closeStates()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    cfg.SecretKey,
		Algorithm: cfg.Algorithm,
		TTL:       cfg.AccessTokenTTL,
	})
	common.FailOnError(ctx, "failed to configure tokens", err)

	gate := auth.NewGate(tokens, auth.NewResolver(store))
	flow := oauth.NewFlow(states, cfg.OAuthStateTTL, nil, oauthProviders(cfg)...)
	zapLogger.Info("oauth providers configured", zap.Strings("providers", flow.Providers()))

	authHandler := handlers.NewAuthHandler(gate, service.NewAuthService(store, auth.NewHasher(cfg.BcryptCost), tokens), flow)
	taskHandler := handlers.NewTaskHandler(service.NewTaskService(store))
	categoryHandler := handlers.NewCategoriesHandler(service.NewCategoryService(store))
	statsHandler := handlers.NewStatsHandler(service.NewStatsService(store))

	// Set up the Gin router with CORS middleware
	router := setupRouter(cfg, zapLogger)
	routes.SetupRoutes(router, authHandler, taskHandler, categoryHandler, statsHandler)

	// Start the server
	startServer(ctx, ":"+cfg.Port, router)

	// Ensure clean up during shutdown
	_ = common.CloseWithTimeout(ctx, "database", 10*time.Second, store.Close)
}

func setupRouter(cfg config.Config, zapLogger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.Middleware(zapLogger))

	// Configure CORS dynamically for different environments
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	return router
}

// newStateStore keeps OAuth states in Redis when REDIS_URL is set, in
// memory otherwise.
func newStateStore(ctx context.Context, cfg config.Config) (oauth.StateStore, func()) {
	if cfg.RedisURL == "" {
		return oauth.NewMemoryStateStore(), func() {}
	}
	client, err := cacheutils.Connect(ctx, cacheutils.Options{
		URL:           cfg.RedisURL,
		TLSServerName: cfg.RedisTLSServerName,
		Production:    cfg.IsProduction(),
	})
	common.FailOnError(ctx, "Error connecting to Redis", err)
	return cacheutils.NewStateStore(client), func() {
		_ = common.CloseWithTimeout(ctx, "redis", 5*time.Second, func(context.Context) error {
			return client.Close()
		})
	}
}

func oauthProviders(cfg config.Config) []*oauth.Provider {
	var providers []*oauth.Provider
	callback := func(name string) string {
		return cfg.OAuthRedirectBaseURL + "/api/auth/oauth/" + name + "/callback"
	}
	if cfg.GoogleClientID != "" {
		providers = append(providers, oauth.Google(oauth.ProviderConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  callback(oauth.ProviderGoogle),
		}))
	}
	if cfg.GitHubClientID != "" {
		providers = append(providers, oauth.GitHub(oauth.ProviderConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  callback(oauth.ProviderGitHub),
		}))
	}
	return providers
}

func startServer(ctx context.Context, addr string, router *gin.Engine) {
	logger := logger.FromCtx(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", addr))
		common.FailIfServerErrored(ctx, "listen", srv.ListenAndServe())
	}()

	// Wait for interrupt signal to gracefully shut down the server with a timeout of 10 seconds
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
