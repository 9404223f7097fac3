package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arvindkr/storeops/internal/domain"
)

var (
	// ErrUnknownOrder means the target order is not in the local snapshot.
	ErrUnknownOrder = errors.New("order not in snapshot")
	// ErrInvalidValue means the new value is not a member of the field's enum.
	ErrInvalidValue = errors.New("invalid field value")
)

// Order mutation fields accepted by the store's partial update.
const (
	FieldStatus  = "status"
	FieldPayment = "payment"
)

// FieldWriter is the write half of the remote store: a partial update
// of named fields on one order, never a full-record overwrite.
type FieldWriter interface {
	UpdateOrderFields(ctx context.Context, id string, fields map[string]any) error
}

// Snapshot is an immutable, versioned view of the order set. Consumers
// recompute stats and buckets from the latest snapshot rather than
// patching derived values incrementally.
type Snapshot struct {
	version uint64
	orders  []domain.OrderView
}

// NewSnapshot wraps orders in a version-0 snapshot. The slice is
// copied so later caller mutations cannot leak in.
func NewSnapshot(orders []domain.OrderView) Snapshot {
	cp := make([]domain.OrderView, len(orders))
	copy(cp, orders)
	return Snapshot{orders: cp}
}

// Orders returns the snapshot's order set. Callers must treat it as
// read-only.
func (s Snapshot) Orders() []domain.OrderView { return s.orders }

func (s Snapshot) Version() uint64 { return s.version }

// Find returns the order with the given ID, if present.
func (s Snapshot) Find(id string) (domain.OrderView, bool) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.OrderView{}, false
}

// Coordinator applies status and payment mutations to single orders:
// it writes the one field to the remote store first and only patches
// the local snapshot after the write succeeds. There is no optimistic
// local write, so a failed remote write leaves the snapshot exactly as
// it was, and no retry is attempted. Concurrent mutations of the same
// order are last-write-wins at the store; locally the patches land in
// completion order.
type Coordinator struct {
	store FieldWriter

	mu   sync.Mutex
	snap Snapshot
}

func NewCoordinator(store FieldWriter, orders []domain.OrderView) *Coordinator {
	return &Coordinator{store: store, snap: NewSnapshot(orders)}
}

// Snapshot returns the current snapshot.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// SetStatus moves the order to the given status. Transitions are
// unconstrained: any status may replace any other.
func (c *Coordinator) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (Snapshot, error) {
	if !domain.ValidOrderStatus(status) {
		return c.Snapshot(), fmt.Errorf("%w: status %q", ErrInvalidValue, status)
	}
	return c.setField(ctx, id, FieldStatus, string(status), func(o *domain.OrderView) {
		o.Status = status
	})
}

// SetPayment flips the order's payment flag.
func (c *Coordinator) SetPayment(ctx context.Context, id string, payment domain.PaymentStatus) (Snapshot, error) {
	if !domain.ValidPaymentStatus(payment) {
		return c.Snapshot(), fmt.Errorf("%w: payment %q", ErrInvalidValue, payment)
	}
	return c.setField(ctx, id, FieldPayment, string(payment), func(o *domain.OrderView) {
		o.Payment = payment
	})
}

func (c *Coordinator) setField(ctx context.Context, id, field, value string, patch func(*domain.OrderView)) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, o := range c.snap.orders {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c.snap, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}

	if err := c.store.UpdateOrderFields(ctx, id, map[string]any{field: value}); err != nil {
		return c.snap, fmt.Errorf("update order %s: %w", id, err)
	}

	// Remote write landed; replace the one record in a fresh slice.
	// The untouched elements are copied by value, not rebuilt.
	next := make([]domain.OrderView, len(c.snap.orders))
	copy(next, c.snap.orders)
	patch(&next[idx])

	c.snap = Snapshot{version: c.snap.version + 1, orders: next}
	return c.snap, nil
}
