package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MalligaSaravanan93/kioskapp/internal/cache"
	"github.com/MalligaSaravanan93/kioskapp/internal/httpapi"
	"github.com/MalligaSaravanan93/kioskapp/internal/invoice"
	"github.com/MalligaSaravanan93/kioskapp/internal/publisher"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"github.com/MalligaSaravanan93/kioskapp/internal/scanner"
	"github.com/MalligaSaravanan93/kioskapp/internal/service"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "kioskdb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backing store
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	log.Info("connected to MongoDB", zap.String("uri", cfg.MongoURI))

	cartRepo := repository.NewCartRepository(mongoDB)
	ordersRepo := repository.NewOrdersRepository(mongoDB)
	checkoutRepo := repository.NewCheckoutRepository(mongoDB)

	// Order cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	orderCache := cache.NewRedisCache(redisClient)

	// Services
	cartSync := service.NewCartSync(cartRepo, log)
	orderSync := service.NewOrderSync(ordersRepo, log)
	orderLookup := service.NewOrderLookup(ordersRepo, orderCache, log)

	orderPublisher := publisher.NewPublisher(log, cfg.KafkaBrokers...)
	defer orderPublisher.Close()
	checkoutSvc := service.NewCheckout(checkoutRepo, invoice.NewGenerator(), orderPublisher, log)

	go func() {
		if err := cartSync.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cart synchronizer stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := orderSync.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("order synchronizer stopped", zap.Error(err))
		}
	}()

	// Scanner feed
	scanConsumer := scanner.NewConsumer(cartSync, log, cfg.KafkaBrokers...)
	defer scanConsumer.Close()
	go scanConsumer.Run(ctx)

	// HTTP surface
	cartHandler := httpapi.NewCartHandler(cartSync, log)
	ordersHandler := httpapi.NewOrdersHandler(orderSync, orderLookup, log)
	checkoutHandler := httpapi.NewCheckoutHandler(cartSync, checkoutSvc, log)
	router := httpapi.NewRouter(cartHandler, ordersHandler, checkoutHandler, cfg.RequestTimeout)

	// No WriteTimeout: the SSE routes hold their response open.
	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     otelhttp.NewHandler(router, "kiosk-api"),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("kiosk API starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down kiosk")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Warn("mongo disconnect failed", zap.Error(err))
	}
	log.Info("kiosk stopped")
}
