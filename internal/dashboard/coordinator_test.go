package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/timewindow"
)

type stubWriter struct {
	err   error
	calls []map[string]any
	ids   []string
}

func (s *stubWriter) UpdateOrderFields(_ context.Context, id string, fields map[string]any) error {
	s.ids = append(s.ids, id)
	s.calls = append(s.calls, fields)
	return s.err
}

func TestCoordinatorSetStatus(t *testing.T) {
	ctx := context.Background()
	orders := []domain.OrderView{
		view("order1", ts(2024, 6, 10, 9, 0), ts(2024, 6, 10, 15, 0), 500, domain.OrderStatusProcessing),
		view("order2", ts(2024, 6, 9, 0, 0), ts(2024, 6, 20, 0, 0), 300, domain.OrderStatusDelivered),
	}

	t.Run("writes remote then patches one record", func(t *testing.T) {
		store := &stubWriter{}
		c := NewCoordinator(store, orders)

		snap, err := c.SetStatus(ctx, "order1", domain.OrderStatusDelivered)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(store.calls) != 1 {
			t.Fatalf("expected 1 store write, got %d", len(store.calls))
		}
		if got := store.calls[0]; len(got) != 1 || got["status"] != "delivered" {
			t.Errorf("expected single-field status write, got %v", got)
		}

		patched, ok := snap.Find("order1")
		if !ok || patched.Status != domain.OrderStatusDelivered {
			t.Errorf("expected order1 delivered, got %+v", patched)
		}
		other, _ := snap.Find("order2")
		if other.Status != domain.OrderStatusDelivered || other.TotalPrice != 300 {
			t.Errorf("expected order2 untouched, got %+v", other)
		}
		if snap.Version() != 1 {
			t.Errorf("expected version 1, got %d", snap.Version())
		}
	})

	t.Run("pending count drops by one after delivery", func(t *testing.T) {
		w := timewindow.At(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
		c := NewCoordinator(&stubWriter{}, orders)

		before := Aggregate(c.Snapshot().Orders(), w)
		snap, err := c.SetStatus(ctx, "order1", domain.OrderStatusDelivered)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		after := Aggregate(snap.Orders(), w)

		if after.PendingDeliveries != before.PendingDeliveries-1 {
			t.Errorf("expected pending to drop from %d by 1, got %d", before.PendingDeliveries, after.PendingDeliveries)
		}

		// Re-delivering an already delivered order changes nothing.
		snap, err = c.SetStatus(ctx, "order1", domain.OrderStatusDelivered)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := Aggregate(snap.Orders(), w).PendingDeliveries; got != after.PendingDeliveries {
			t.Errorf("expected pending unchanged at %d, got %d", after.PendingDeliveries, got)
		}
	})

	t.Run("remote failure leaves snapshot untouched", func(t *testing.T) {
		w := timewindow.At(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
		store := &stubWriter{err: errors.New("store unavailable")}
		c := NewCoordinator(store, orders)
		before := c.Snapshot()

		snap, err := c.SetPayment(ctx, "order1", domain.PaymentPaid)
		if err == nil {
			t.Fatal("expected error from failed write")
		}

		if snap.Version() != before.Version() {
			t.Errorf("expected version %d, got %d", before.Version(), snap.Version())
		}
		o, _ := snap.Find("order1")
		if o.Payment != domain.PaymentUnpaid {
			t.Errorf("expected payment unchanged, got %s", o.Payment)
		}
		if got := Aggregate(snap.Orders(), w).TotalRevenue; got != 800 {
			t.Errorf("expected revenue unchanged at 800, got %v", got)
		}
	})

	t.Run("unknown order never reaches the store", func(t *testing.T) {
		store := &stubWriter{}
		c := NewCoordinator(store, orders)

		_, err := c.SetStatus(ctx, "nope", domain.OrderStatusCancelled)
		if !errors.Is(err, ErrUnknownOrder) {
			t.Fatalf("expected ErrUnknownOrder, got %v", err)
		}
		if len(store.calls) != 0 {
			t.Errorf("expected no store writes, got %d", len(store.calls))
		}
	})

	t.Run("invalid enum value is rejected locally", func(t *testing.T) {
		store := &stubWriter{}
		c := NewCoordinator(store, orders)

		if _, err := c.SetStatus(ctx, "order1", domain.OrderStatus("shipped")); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
		if _, err := c.SetPayment(ctx, "order1", domain.PaymentStatus("refunded")); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
		if len(store.calls) != 0 {
			t.Errorf("expected no store writes, got %d", len(store.calls))
		}
	})

	t.Run("delivered may move back to processing", func(t *testing.T) {
		c := NewCoordinator(&stubWriter{}, orders)

		snap, err := c.SetStatus(ctx, "order2", domain.OrderStatusProcessing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		o, _ := snap.Find("order2")
		if o.Status != domain.OrderStatusProcessing {
			t.Errorf("expected processing, got %s", o.Status)
		}
	})

	t.Run("mutations on different orders compose", func(t *testing.T) {
		store := &stubWriter{}
		c := NewCoordinator(store, orders)

		if _, err := c.SetPayment(ctx, "order1", domain.PaymentPaid); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		snap, err := c.SetStatus(ctx, "order2", domain.OrderStatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		o1, _ := snap.Find("order1")
		o2, _ := snap.Find("order2")
		if o1.Payment != domain.PaymentPaid || o2.Status != domain.OrderStatusCancelled {
			t.Errorf("expected both patches present, got %+v / %+v", o1, o2)
		}
		if snap.Version() != 2 {
			t.Errorf("expected version 2, got %d", snap.Version())
		}
	})
}
