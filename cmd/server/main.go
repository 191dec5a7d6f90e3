package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetpay/withdraw-service/internal/config"
	withdrawgrpc "github.com/fleetpay/withdraw-service/internal/grpc"
	"github.com/fleetpay/withdraw-service/internal/handler"
	"github.com/fleetpay/withdraw-service/internal/kafka"
	"github.com/fleetpay/withdraw-service/internal/metrics"
	"github.com/fleetpay/withdraw-service/internal/provider"
	"github.com/fleetpay/withdraw-service/internal/repository"
	"github.com/fleetpay/withdraw-service/internal/withdraw"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Setup metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry, "withdraw_service")

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not available, audit records will not persist", zap.Error(err))
	}

	// Create repository
	repo := repository.NewRedisRepository(redisClient)

	// Create Jump API client
	jumpClient := provider.NewJumpClient(
		cfg.JumpBaseURL,
		cfg.JumpClientKey,
		cfg.JumpClientKeyInQuery,
		cfg.JumpRequestTimeout,
		logger,
		m,
	)

	// Create withdrawal service
	withdrawService := withdraw.NewService(
		jumpClient,
		repo,
		logger,
		m,
		cfg.DefaultTransactionTypeID,
		cfg.CandidateRetryDelay,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	httpHandler := handler.NewHTTPHandler(withdrawService, repo, registry, logger)
	httpHandler.SetupRoutes(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // a full candidate sweep can be slow
	}

	// Create gRPC server (health + reflection)
	grpcServer, _ := withdrawgrpc.NewServer()

	// Create Kafka producer and consumer
	statusProducer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicStatus)
	kafkaConsumer := kafka.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaTopicRequested,
		cfg.KafkaConsumerGroup,
		withdrawService,
		statusProducer,
		logger,
	)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Start gRPC server
	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			logger.Fatal("Failed to listen for gRPC", zap.Error(err))
		}
		logger.Info("Starting gRPC server", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	// Start Kafka consumer
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	go func() {
		if err := kafkaConsumer.Start(consumerCtx); err != nil {
			logger.Error("Kafka consumer error", zap.Error(err))
		}
	}()

	logger.Info("Withdraw Service started",
		zap.String("httpPort", cfg.HTTPPort),
		zap.String("grpcPort", cfg.GRPCPort),
		zap.String("jumpBaseUrl", cfg.JumpBaseURL),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	cancelConsumer()
	kafkaConsumer.Close()
	statusProducer.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("Withdraw Service stopped")
}
