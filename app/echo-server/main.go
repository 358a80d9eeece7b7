package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"misikaMarket/app/echo-server/metrics"
	"misikaMarket/app/echo-server/router"
	"misikaMarket/business/address"
	"misikaMarket/business/admin"
	"misikaMarket/business/auth"
	"misikaMarket/business/cart"
	"misikaMarket/business/category"
	"misikaMarket/business/contact"
	"misikaMarket/business/legacyuser"
	"misikaMarket/business/notification"
	"misikaMarket/business/orders"
	"misikaMarket/business/payments"
	"misikaMarket/business/product"
	userService "misikaMarket/business/user"
	"misikaMarket/internal/middleware"
	"misikaMarket/internal/repository/legacy"
	mailjet "misikaMarket/internal/repository/notification"
	psqlRepo "misikaMarket/internal/repository/postgres"
	redisRepo "misikaMarket/internal/repository/redis"
	"misikaMarket/internal/repository/stripe"
	"misikaMarket/internal/rest"
	"misikaMarket/pkg/config"
	"misikaMarket/pkg/database"
	redisdb "misikaMarket/pkg/database/redis"
	"misikaMarket/pkg/logger"
	appmetrics "misikaMarket/pkg/metrics"
	"misikaMarket/pkg/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Misika Market", "version", cfg.App.Version, "env", cfg.App.Environment)

	appmetrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	legacyPool, err := database.InitLegacyPool(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to connect to legacy user store", "error", err)
	}
	defer legacyPool.Close()

	// Redis only backs token revocation, so the API runs without it.
	var redisClient *goredis.Client
	var revocations *redisRepo.TokenRepository
	if cfg.Redis.Enabled {
		redisClient, err = redisdb.Connect(context.Background(), cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		revocations = redisRepo.NewTokenRepository(redisClient)
		logger.Info("Redis connected, token revocation enabled")
	}

	// Init notification from mailjet
	mailjetEmail := mailjet.NewMailjetRepository(
		mailjet.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	dispatcher := notification.NewDispatcher(mailjetEmail, notification.Config{
		Workers:     cfg.Shop.NotificationWorkers,
		MaxAttempts: cfg.Shop.NotificationAttempts,
	})

	var gateway payments.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = stripe.NewStripeRepository(stripe.StripeConfig{
			SecretKey: cfg.Stripe.SecretKey,
			Currency:  cfg.Stripe.Currency,
		})
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, card payments are disabled")
	}

	// Init validate
	validate := rest.NewValidator()
	tokens := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.RefreshSecretKey, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Init repo
	tx := psqlRepo.NewTransactor(db)
	userRepo := psqlRepo.NewUserRepository(db)
	otpRepo := psqlRepo.NewOTPRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)
	addressRepo := psqlRepo.NewAddressRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	paymentsRepo := psqlRepo.NewPaymentsRepository(db)
	contactRepo := psqlRepo.NewContactRepository(db)
	statsRepo := psqlRepo.NewStatsRepository(db)
	legacyRepo := legacy.NewUserRepository(legacyPool)

	identities := auth.NewIdentityChain(userRepo, legacyRepo)

	// Interfaces stay nil when Redis is disabled.
	var revocationStore userService.RevocationStore
	var revocationChecker middleware.RevocationChecker
	if revocations != nil {
		revocationStore = revocations
		revocationChecker = revocations
	}

	// Init service
	accountService := userService.NewUserService(userRepo, otpRepo, ordersRepo, cartRepo, tokens, identities, revocationStore, dispatcher, tx, validate)
	legacyService := legacyuser.NewLegacyUserService(legacyRepo, tokens, dispatcher, validate)
	categoryService := category.NewCategoryService(categoryRepo)
	productService := product.NewProductService(productRepo, categoryRepo)
	cartService := cart.NewCartService(cartRepo, productRepo, tx)
	addressService := address.NewAddressService(addressRepo, tx)
	ordersService := orders.NewOrdersService(ordersRepo, cartRepo, productRepo, addressRepo, userRepo, dispatcher, tx)
	paymentsService := payments.NewPaymentsService(gateway, paymentsRepo, ordersRepo, tx)
	contactService := contact.NewContactService(contactRepo, dispatcher, cfg.App.AdminEmail)
	adminService := admin.NewAdminService(userRepo, legacyRepo, ordersRepo, statsRepo, categoryRepo, ordersService)

	// Init handler
	timeout := cfg.Server.RequestTimeout
	authHandler := rest.NewAuthHandler(accountService, validate, timeout)
	userHandler := rest.NewUserHandler(legacyService, accountService, validate, timeout)
	categoryHandler := rest.NewCategoryHandler(categoryService, validate, timeout)
	productHandler := rest.NewProductHandler(productService, validate, timeout)
	cartHandler := rest.NewCartHandler(cartService, validate, timeout)
	ordersHandler := rest.NewOrdersHandler(ordersService, validate, timeout)
	addressHandler := rest.NewAddressHandler(addressService, validate, timeout)
	paymentsHandler := rest.NewPaymentsHandler(paymentsService, validate, timeout)
	contactHandler := rest.NewContactHandler(contactService, validate, timeout)
	adminHandler := rest.NewAdminHandler(adminService, validate, timeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.NewErrorHandler(cfg.IsProduction())

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
			)
			return nil
		},
	}))
	e.Use(middleware.RequestMetrics())

	checks := map[string]metrics.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"legacy": func(ctx context.Context) error {
			return legacyPool.Ping(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	metrics.RegisterEndpoints(e, cfg.App.Version, checks)

	// Auth middleware
	authRequired := middleware.Authenticate(tokens, identities, revocationChecker)

	// Setup routes
	api := e.Group("/api")
	router.SetupAuthRoutes(api, authHandler, authRequired)
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupCategoryRoutes(api, categoryHandler, authRequired)
	router.SetupProductRoutes(api, productHandler, authRequired)
	router.SetupCartRoutes(api, cartHandler, authRequired)
	router.SetupOrdersRoutes(api, ordersHandler, authRequired)
	router.SetupAddressRoutes(api, addressHandler, authRequired)
	router.SetupPaymentsRoutes(api, paymentsHandler, authRequired)
	router.SetupContactRoutes(api, contactHandler, authRequired)
	router.SetupAdminRoutes(api, adminHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Pending emails get the remaining shutdown window
	if err := dispatcher.Close(ctx); err != nil {
		logger.Error("Notification queue not drained", "error", err)
	}

	if err := redisdb.Close(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}
