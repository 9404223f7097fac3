//go:build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arvindkr/storeops/internal/dashboard"
	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/messaging"
	"github.com/arvindkr/storeops/internal/notifier"
	"github.com/arvindkr/storeops/internal/orders"
	"github.com/arvindkr/storeops/internal/products"
	"github.com/arvindkr/storeops/internal/users"
	"github.com/arvindkr/storeops/internal/worker"
)

func TestOrderLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`INSERT INTO users (id, name, phone, address, role) VALUES ('user-1', 'Asha Patel', '+911234567890', '12 Market Road', 'customer')`); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO products (id, name, price, unit, enable) VALUES ('prod-1', 'Basmati Rice', 300, 'kg', TRUE)`); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO products (id, name, price, unit, enable) VALUES ('prod-2', 'Old Stock', 100, 'kg', FALSE)`); err != nil {
		t.Fatalf("failed to seed disabled product: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orderRepo := orders.NewRepository(db)
	userRepo := users.NewRepository(db)
	productRepo := products.NewRepository(db)

	orderHandler := orders.NewHandler(orderRepo, userRepo, productRepo, nil, nil, logger)
	dashboardHandler := dashboard.NewHandler(orderRepo, userRepo, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard/stats", dashboardHandler.HandleStats)
	mux.HandleFunc("GET /dashboard/buckets", dashboardHandler.HandleBucketCounts)
	mux.HandleFunc("POST /orders", orderHandler.HandleCreate)
	mux.HandleFunc("PATCH /orders/{id}/status", orderHandler.HandleUpdateStatus)

	deliveryDate := time.Now().UTC().Format(time.RFC3339)

	t.Run("rejects disabled products", func(t *testing.T) {
		body := fmt.Sprintf(`{"user_id": "user-1", "product_id": "prod-2", "quantity": 1, "delivery_date": %q}`, deliveryDate)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	var orderID string

	t.Run("creates order with price snapshot", func(t *testing.T) {
		body := fmt.Sprintf(`{"user_id": "user-1", "product_id": "prod-1", "quantity": 2, "delivery_date": %q}`, deliveryDate)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created domain.Order
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected order ID to be set")
		}
		if created.TotalPrice != 600 {
			t.Fatalf("expected total price 600, got %v", created.TotalPrice)
		}
		if created.Status != domain.OrderStatusProcessing {
			t.Fatalf("expected status processing, got %s", created.Status)
		}
		if created.OrderedAt == nil {
			t.Fatal("expected ordered_at to be assigned")
		}
		orderID = created.ID
	})

	t.Run("dashboard reflects the new order", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var stats dashboard.Stats
		if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
			t.Fatalf("failed to decode stats: %v", err)
		}
		want := dashboard.Stats{TotalOrders: 1, TotalRevenue: 600, PendingDeliveries: 1, TodaysOrders: 1}
		if stats != want {
			t.Fatalf("expected stats %+v, got %+v", want, stats)
		}
	})

	t.Run("status mutation patches store and stats", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status", strings.NewReader(`{"status": "delivered"}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var patched domain.OrderView
		if err := json.NewDecoder(rec.Body).Decode(&patched); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if patched.Status != domain.OrderStatusDelivered {
			t.Fatalf("expected delivered, got %s", patched.Status)
		}
		if patched.UserName != "Asha Patel" {
			t.Fatalf("expected joined user name, got %q", patched.UserName)
		}

		stored, err := orderRepo.GetByID(ctx, orderID)
		if err != nil {
			t.Fatalf("failed to fetch order: %v", err)
		}
		if stored.Status != domain.OrderStatusDelivered {
			t.Fatalf("expected stored status delivered, got %s", stored.Status)
		}

		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
		var stats dashboard.Stats
		if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
			t.Fatalf("failed to decode stats: %v", err)
		}
		if stats.PendingDeliveries != 0 {
			t.Fatalf("expected 0 pending deliveries, got %d", stats.PendingDeliveries)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status", strings.NewReader(`{"status": "shipped"}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestDeliveryNotificationFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	brokers, cleanupKafka := SetupKafka(ctx, t)
	defer cleanupKafka()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`INSERT INTO users (id, name, phone, address, role) VALUES ('user-1', 'Asha Patel', '+911234567890', '12 Market Road', 'customer')`); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	smsRequests := make(chan string, 1)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse sms form: %v", err)
		}
		smsRequests <- r.PostForm.Get("to")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1"}}`))
	}))
	defer gateway.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sms := notifier.NewSMSClient(gateway.URL, "storeops", "STOREOPS", "key", gateway.Client())
	handler := worker.NewDeliveryNotifier(users.NewRepository(db), sms, logger)

	producer := messaging.NewProducer(brokers, messaging.TopicOrderUpdated)
	defer func() { _ = producer.Close() }()

	event := domain.OrderUpdatedEvent{
		OrderID:   "order-1",
		UserID:    "user-1",
		Field:     "status",
		OldValue:  "processing",
		NewValue:  "delivered",
		Timestamp: time.Now().UTC(),
	}
	if err := producer.Publish(ctx, event.OrderID, event); err != nil {
		t.Fatalf("failed to publish event: %v", err)
	}

	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderUpdated, "delivery-notifier-test",
		messaging.WithStartOffset(-2))
	defer func() { _ = consumer.Close() }()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go func() {
		_ = consumer.Consume(consumerCtx, handler.Handle)
	}()

	select {
	case to := <-smsRequests:
		if to != "+911234567890" {
			t.Fatalf("expected sms to +911234567890, got %s", to)
		}
	case <-time.After(60 * time.Second):
		t.Fatal("timed out waiting for delivery sms")
	}
}
