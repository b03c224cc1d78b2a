package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os/signal" // Shutdown signals
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging

	"storefront/internal/api"     // Custom package for API handlers
	"storefront/internal/config"  // Custom package for configuration
	"storefront/internal/mail"    // Reset mail dispatch
	"storefront/internal/metrics" // Prometheus instruments
	"storefront/internal/payment" // Payment gateway
	"storefront/internal/service" // Business rules
	"storefront/internal/store"   // GORM store
	"storefront/internal/utils"   // Cache and locks
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	log := logrus.WithField("service", "storefront")

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	gdb, err := store.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	st := store.New(gdb)

	// Setup Redis client; without it the cache, lock and rate limiter degrade to local fallbacks
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set: using in-process checkout lock and no cache")
	}

	// Payment gateway
	var gateway payment.Gateway = payment.NewFake()
	if cfg.StripeKey != "" {
		gateway = payment.NewStripe(cfg.StripeKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set: using the fake payment gateway")
	}

	// Outbound mail goes through the queue when a broker is configured
	var mailer mail.Mailer = mail.LogMailer{Log: log.WithField("component", "mail")}
	if cfg.RabbitMQURL != "" {
		publisher := mail.NewQueuePublisher(cfg.RabbitMQURL, cfg.MailQueue, log.WithField("component", "mail"))
		defer publisher.Close()
		mailer = publisher
	}

	if cfg.LegacyDelete {
		log.Warn("ITEM_DELETE_LEGACY_GATE enabled: non-owners holding ADMIN or ITEMDELETE cannot delete items")
	}

	m := metrics.New()
	guard := service.NewGuard(st)
	auth := service.NewAuth(st, mailer, service.AuthOptions{
		Secret:      cfg.JWTSecret,
		BcryptCost:  cfg.BcryptCost,
		FrontendURL: cfg.FrontendURL,
		MailFrom:    cfg.MailFrom,
	}, log.WithField("component", "auth"))
	services := api.Services{
		Auth:     auth,
		Guard:    guard,
		Users:    service.NewUsers(st, guard, log.WithField("component", "users")),
		Catalog:  service.NewCatalog(st, guard, utils.NewRedisCache(redisClient, cfg.CacheTTL), cfg.LegacyDelete, log.WithField("component", "catalog")),
		Cart:     service.NewCart(st, log.WithField("component", "cart")),
		Checkout: service.NewCheckout(st, st, gateway, utils.NewLocker(redisClient), cfg.CheckoutTTL, m, log.WithField("component", "checkout")),
		Orders:   service.NewOrders(st, guard),
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := api.NewRouter(services, api.RouterOptions{
		Cookies:        api.Cookies{Secure: cfg.IsProd},
		RateLimit:      cfg.RateLimit,
		Redis:          redisClient,
		Metrics:        m,
		Log:            log.WithField("component", "http"),
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		log.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
