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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/arvindkr/storeops/internal/dashboard"
	"github.com/arvindkr/storeops/internal/messaging"
	"github.com/arvindkr/storeops/internal/orders"
	"github.com/arvindkr/storeops/internal/products"
	"github.com/arvindkr/storeops/internal/telemetry"
	"github.com/arvindkr/storeops/internal/users"
)

const (
	serviceName    = "storeops-api"
	serviceVersion = "0.1.0"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

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

	var createdProducer, updatedProducer *messaging.Producer
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		createdProducer = messaging.NewProducer(brokers, messaging.TopicOrderCreated)
		defer func() { _ = createdProducer.Close() }()
		updatedProducer = messaging.NewProducer(brokers, messaging.TopicOrderUpdated)
		defer func() { _ = updatedProducer.Close() }()
	}

	orderRepo := orders.NewRepository(db)
	userRepo := users.NewRepository(db)
	productRepo := products.NewRepository(db)

	orderHandler := orders.NewHandler(orderRepo, userRepo, productRepo, createdProducer, updatedProducer, logger)
	dashboardHandler := dashboard.NewHandler(orderRepo, userRepo, logger)
	productHandler := products.NewHandler(productRepo, logger)
	userHandler := users.NewHandler(userRepo, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /dashboard/stats", telemetry.WithHTTPRoute(dashboardHandler.HandleStats))
	mux.HandleFunc("GET /dashboard/buckets", telemetry.WithHTTPRoute(dashboardHandler.HandleBucketCounts))
	mux.HandleFunc("GET /dashboard/buckets/{bucket}", telemetry.WithHTTPRoute(dashboardHandler.HandleBucket))

	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(orderHandler.HandleList))
	mux.HandleFunc("GET /orders/export", telemetry.WithHTTPRoute(orderHandler.HandleExport))
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(orderHandler.HandleCreate))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(orderHandler.HandleUpdateStatus))
	mux.HandleFunc("PATCH /orders/{id}/payment", telemetry.WithHTTPRoute(orderHandler.HandleUpdatePayment))

	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(productHandler.HandleList))
	mux.HandleFunc("POST /products", telemetry.WithHTTPRoute(productHandler.HandleCreate))
	mux.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(productHandler.HandleGet))
	mux.HandleFunc("PUT /products/{id}", telemetry.WithHTTPRoute(productHandler.HandleUpdate))

	mux.HandleFunc("GET /users", telemetry.WithHTTPRoute(userHandler.HandleList))
	mux.HandleFunc("GET /users/{id}", telemetry.WithHTTPRoute(userHandler.HandleGet))
	mux.HandleFunc("GET /users/{id}/orders", telemetry.WithHTTPRoute(orderHandler.HandleListByUser))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storeops api", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
