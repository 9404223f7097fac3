package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/arvindkr/storeops/internal/messaging"
	"github.com/arvindkr/storeops/internal/notifier"
	"github.com/arvindkr/storeops/internal/telemetry"
	"github.com/arvindkr/storeops/internal/users"
	"github.com/arvindkr/storeops/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	smsEndpoint := os.Getenv("SMS_GATEWAY_URL")
	if smsEndpoint == "" {
		logger.Error("SMS_GATEWAY_URL environment variable is required")
		os.Exit(1)
	}
	smsUsername := os.Getenv("SMS_GATEWAY_USERNAME")
	smsSenderID := os.Getenv("SMS_SENDER_ID")
	smsAPIKey := os.Getenv("SMS_GATEWAY_API_KEY")

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")
	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderUpdated, "delivery-notifier")
	defer func() { _ = consumer.Close() }()

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	sms := notifier.NewSMSClient(smsEndpoint, smsUsername, smsSenderID, smsAPIKey, httpClient)
	handler := worker.NewDeliveryNotifier(users.NewRepository(db), sms, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting delivery notifier", "brokers", brokers)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
