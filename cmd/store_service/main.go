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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ramG-reddy/sms-pipeline/internal/platform/config"
	"github.com/ramG-reddy/sms-pipeline/internal/platform/database"
	"github.com/ramG-reddy/sms-pipeline/internal/platform/logger"
	"github.com/ramG-reddy/sms-pipeline/internal/platform/messagebroker"
	"github.com/ramG-reddy/sms-pipeline/internal/store_service/app"
	"github.com/ramG-reddy/sms-pipeline/internal/store_service/repository/postgres"
	storehttp "github.com/ramG-reddy/sms-pipeline/internal/store_service/transport/http"
)

const (
	serviceName     = "store_service"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Store service starting...", "port", cfg.StoreServicePort)

	startupCtx, startupCancel := context.WithTimeout(mainCtx, startupTimeout)
	dbPool, err := database.NewDBPool(startupCtx, cfg.PostgresDSN)
	startupCancel()
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL")

	consumerSource, err := messagebroker.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, cfg.KafkaTopic)
	if err != nil {
		appLogger.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumerSource.Close()
	appLogger.Info("Kafka consumer initialized",
		"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "group", cfg.KafkaConsumerGroup)

	recordRepo := postgres.NewPgRecordRepository(dbPool, appLogger)
	consumer := app.NewEventConsumer(consumerSource, recordRepo, appLogger,
		cfg.PersistRetryBackoff, cfg.PersistRetryBackoffMax)
	historyHandler := storehttp.NewHistoryHandler(recordRepo, cfg.HistoryDefaultLimit, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "UP", "service": serviceName})
	})
	r.Handle("/metrics", promhttp.Handler())
	historyHandler.RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.StoreServicePort),
		Handler: r,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	// The consumer worker: drains the log into the store until shutdown.
	g.Go(func() error {
		return consumer.Run(groupCtx)
	})

	// The read path stays up independently of consumer health.
	g.Go(func() error {
		appLogger.Info(fmt.Sprintf("Store service listening on port %d", cfg.StoreServicePort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Shutdown signal received, shutting down HTTP server...")
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		return httpServer.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Store service exited with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Store service shut down gracefully.")
}
