package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ramG-reddy/sms-pipeline/internal/platform/config"
	"github.com/ramG-reddy/sms-pipeline/internal/platform/logger"
	"github.com/ramG-reddy/sms-pipeline/internal/platform/messagebroker"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/adapters/smsvendor"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/app"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/events"
	"github.com/ramG-reddy/sms-pipeline/internal/sender_service/repository/redisrepo"
	senderhttp "github.com/ramG-reddy/sms-pipeline/internal/sender_service/transport/http"
)

const serviceName = "sender_service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Sender service starting...", "port", cfg.SenderServicePort)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		appLogger.Error("Failed to connect to Redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	pingCancel()
	appLogger.Info("Connected to Redis", "addr", cfg.RedisAddr)

	publisher, err := messagebroker.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, appLogger)
	if err != nil {
		appLogger.Error("Failed to create Kafka publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	appLogger.Info("Kafka publisher initialized", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)

	gate := redisrepo.NewBlockListGate(redisClient, cfg.RedisBlockListKey, appLogger)
	vendor := smsvendor.NewMockVendor(appLogger, cfg.VendorMinDelayMs, cfg.VendorMaxDelayMs, cfg.VendorFailureRate)
	eventPublisher := events.NewKafkaEventPublisher(publisher, cfg.PublishMaxAttempts, cfg.PublishBackoff, appLogger)
	sendService := app.NewSendAppService(gate, vendor, eventPublisher, appLogger)

	validate := validator.New()
	smsHandler := senderhttp.NewSMSHandler(sendService, validate, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(senderhttp.PrometheusMetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "UP", "service": serviceName})
	})
	r.Handle("/metrics", promhttp.Handler())
	smsHandler.RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.SenderServicePort),
		Handler: r,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("Sender service listening on port %d", cfg.SenderServicePort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan

	appLogger.Info("Shutdown signal received, shutting down HTTP server...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Sender service shut down.")
}
