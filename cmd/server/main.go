package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagcord/tagcord-backend/config"
	"github.com/tagcord/tagcord-backend/internal/app/controller"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/internal/db"
	"github.com/tagcord/tagcord-backend/internal/feed"
	"github.com/tagcord/tagcord-backend/internal/middleware"
	"github.com/tagcord/tagcord-backend/internal/router"
	"github.com/tagcord/tagcord-backend/internal/scheduler"
	"github.com/tagcord/tagcord-backend/internal/storage"
	"github.com/tagcord/tagcord-backend/pkg/discord"
	"github.com/tagcord/tagcord-backend/pkg/logger"
	"github.com/tagcord/tagcord-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Tagcord Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the session blacklist and the listing page cache. The
	// server still runs without it, just uncached and without revocation.
	var listingCache service.PageCache
	var revoker service.TokenRevoker
	var blacklistCheck middleware.BlacklistChecker
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running without cache and token revocation", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		listingCache = redis.NewListingCache(redis.GetClient(), cfg.Listing.CacheTTL)
		revoker = redisRevoker{}
		blacklistCheck = func(c *gin.Context, token string) (bool, error) {
			return redis.IsTokenBlacklisted(c.Request.Context(), token)
		}
	}

	// Discord OAuth client
	discordClient, err := discord.NewClient(discord.Config{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.Discord.RedirectURL,
		APIBaseURL:   cfg.Discord.APIBaseURL,
		AuthBaseURL:  cfg.Discord.AuthBaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Discord client", err)
	}

	// Initialize repositories
	tagRepo := repository.NewTagRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())

	// Initialize services
	listingService := service.NewListingService(tagRepo, listingCache, cfg.Listing.PageSize)
	feedHub := feed.NewHub(listingService)
	go feedHub.Run()

	tagService := service.NewTagService(tagRepo, profileRepo, listingService, feedHub)
	authService := service.NewAuthService(discordClient, profileRepo, tagRepo, revoker, cfg.JWT)
	adminService := service.NewAdminService(tagService, tagRepo, profileRepo)

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	tagController := controller.NewTagController(tagService, listingService, cfg.Listing.HomeFeedSize)
	adminController := controller.NewAdminController(adminService)
	uploadController := controller.NewUploadController(s3Storage)
	feedController := controller.NewFeedController(feedHub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklistCheck)

	// Home feed cache warmer
	warmer := scheduler.NewListingWarmer(listingService, cfg.Listing.HomeFeedSize, cfg.Listing.WarmSchedule)
	if err := warmer.Start(); err != nil {
		logger.Warn("Listing cache warmer not started", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer warmer.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		tagController,
		adminController,
		uploadController,
		feedController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	if err := redis.Close(); err != nil {
		logger.Warn("Failed to close Redis connection", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := db.Close(); err != nil {
		logger.Warn("Failed to close database connection", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Server stopped successfully")
}

// redisRevoker adapts the package-level blacklist helpers to the auth
// service's TokenRevoker.
type redisRevoker struct{}

func (redisRevoker) Revoke(ctx context.Context, token string, remaining time.Duration) error {
	return redis.BlacklistToken(ctx, token, remaining)
}
