package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/jerseylab/jerseylab-backend/internal/app/controller"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/jerseylab/jerseylab-backend/internal/cache"
	"github.com/jerseylab/jerseylab-backend/internal/cart"
	"github.com/jerseylab/jerseylab-backend/internal/db"
	"github.com/jerseylab/jerseylab-backend/internal/middleware"
	"github.com/jerseylab/jerseylab-backend/internal/router"
	"github.com/jerseylab/jerseylab-backend/internal/scheduler"
	"github.com/jerseylab/jerseylab-backend/internal/storage"
	"github.com/jerseylab/jerseylab-backend/internal/websocket"
	"github.com/jerseylab/jerseylab-backend/pkg/logger"
	"github.com/jerseylab/jerseylab-backend/pkg/redis"
	"github.com/jerseylab/jerseylab-backend/pkg/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting JerseyLab Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs carts, the catalog cache and the token blacklist when configured
	var cartStore cart.Store = cart.NewMemoryStore(cfg.Cart.SessionTTL)
	var catalogCache cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize redis", err)
		}
		defer redis.Close()
		cartStore = cart.NewRedisStore(redis.GetClient(), cfg.Cart.SessionTTL)
		catalogCache = cache.NewRedisStore(redis.GetClient())
	} else {
		logger.Warn("Redis not configured; carts and cache are kept in memory and logout cannot revoke tokens")
	}

	var presigner storage.Presigner
	if cfg.S3.Bucket != "" {
		presigner = storage.NewS3Storage(cfg.S3)
	} else {
		logger.Warn("S3 bucket not configured; design uploads are disabled")
	}

	var mailer util.Mailer
	if cfg.Mail.SMTPHost != "" {
		mailer = util.NewSMTPMailer(cfg.Mail)
	}

	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	promoRepo := repository.NewPromoCodeRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	inquiryRepo := repository.NewInquiryRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		mailer,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, catalogCache, cfg.Cache.CatalogTTL)
	promoService := service.NewPromoService(promoRepo, nil)
	cartService := service.NewCartService(cartStore, promoService, catalogService)
	orderService := service.NewOrderService(orderRepo, cartService, promoService, hub, db.GetDB())
	inquiryService := service.NewInquiryService(inquiryRepo, mailer, hub)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	if cfg.Google.Enabled() {
		authController.EnableGoogle(util.NewGoogleOAuth(cfg.Google), cfg.Google, cfg.Server.Environment == "production")
	} else {
		logger.Warn("Google OAuth credentials missing, Google sign-in disabled")
	}
	catalogController := controller.NewCatalogController(catalogService)
	promoController := controller.NewPromoController(promoService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	inquiryController := controller.NewInquiryController(inquiryService)
	userController := controller.NewUserController(userService)
	uploadController := controller.NewUploadController(presigner)
	feedController := controller.NewFeedController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		catalogController,
		promoController,
		cartController,
		orderController,
		inquiryController,
		userController,
		uploadController,
		feedController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	promoExpiry := scheduler.NewPromoExpiryScheduler(promoService, hub, cfg.Scheduler.PromoExpirySpec)
	if err := promoExpiry.Start(); err != nil {
		logger.Fatal("Failed to start promo expiry scheduler", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	promoExpiry.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	hub.Stop()

	logger.Info("Server stopped successfully")
}
