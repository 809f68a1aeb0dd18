package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/config"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/fjod/go_cart/storefront/pkg/metrics"
)

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log = logger.New(cfg.LogLevel, cfg.LogFormat)

	repo, err := repository.NewRepository(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Infof("connected to %s database", cfg.DBDriver)

	ctx := context.Background()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	log.Info("redis ping succeeded")

	pub := newPublisher(cfg, log)
	defer pub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "server")

	gate := auth.NewGate()
	stripeClient := checkout.NewStripeClient(cfg.StripeAPIKey, cfg.StripeAPIURL, cfg.RequestTimeout)
	provider := checkout.NewStripeProvider(stripeClient, log)
	checkoutCfg := checkout.NewConfig(cfg.PublicURL, cfg.AllowedCountries, cfg.ShippingFeeCents)

	catalog := service.NewCatalogService(repo, gate, log)
	users := service.NewUserService(repo, log)
	carts := service.NewCartService(session.NewRedisCartStore(redisClient), repo, log)
	checkouts := service.NewCheckoutService(carts, provider, checkoutCfg, pub, serverMetrics, log)

	router := h.NewRouter(h.RouterConfig{
		Logger:         log,
		Sessions:       session.NewManager([]byte(cfg.SecretKey), cfg.SecureCookies),
		Gate:           gate,
		Catalog:        catalog,
		Carts:          carts,
		Checkout:       checkouts,
		Users:          users,
		Metrics:        serverMetrics,
		Gatherer:       reg,
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}

func newPublisher(cfg *config.Config, log *logrus.Logger) publisher.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, checkout events are not published")
		return publisher.NopPublisher{}
	}
	log.Infof("publishing checkout events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	return publisher.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
}
