package orders

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arvindkr/storeops/internal/dashboard"
	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/messaging"
)

// Store is the order side of the document store.
type Store interface {
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	UpdateOrderFields(ctx context.Context, id string, fields map[string]any) error
}

// UserDirectory supplies users for the read-time join.
type UserDirectory interface {
	List(ctx context.Context) ([]domain.User, error)
}

// ProductCatalog resolves the product an order snapshots its price from.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Handler struct {
	store    Store
	users    UserDirectory
	products ProductCatalog
	created  *messaging.Producer
	updated  *messaging.Producer
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(store Store, users UserDirectory, products ProductCatalog, created, updated *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		users:    users,
		products: products,
		created:  created,
		updated:  updated,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// joined fetches both collections and recomputes the user join. The
// join is a view; it is never written back.
func (h *Handler) joined(ctx context.Context) ([]domain.OrderView, error) {
	users, err := h.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	orders, err := h.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	return domain.JoinOrders(orders, users), nil
}

func parseQuery(r *http.Request) (dashboard.OrderQuery, error) {
	q := dashboard.OrderQuery{Search: r.URL.Query().Get("search")}

	for name, dst := range map[string]**time.Time{"start": &q.Start, "end": &q.End} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return q, fmt.Errorf("invalid %s date %q", name, raw)
		}
		*dst = &day
	}

	return q, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.joined(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}

	h.writeJSON(w, http.StatusOK, dashboard.FilterOrders(views, query))
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.joined(r.Context())
	if err != nil {
		h.logger.Error("failed to export orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Order ID", "Customer Name", "Product", "Order Date", "Delivery Date", "Total Price", "Payment Status", "Order Status", "Address"})
	for _, o := range dashboard.FilterOrders(views, query) {
		_ = cw.Write([]string{
			o.ID,
			o.UserName,
			o.ProductName,
			formatDate(o.OrderedAt),
			formatDate(o.DeliveryDate),
			fmt.Sprintf("%.2f", o.TotalPrice),
			string(o.Payment),
			string(o.Status),
			o.UserAddress,
		})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write csv", "error", err)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "could not load order")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load order")
		return
	}

	h.writeJSON(w, http.StatusOK, domain.JoinOrders([]domain.Order{*order}, users)[0])
}

func (h *Handler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}

	orders, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list user orders", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}

	h.writeJSON(w, http.StatusOK, domain.JoinOrders(orders, users))
}

type createOrderRequest struct {
	UserID       string               `json:"user_id"`
	ProductID    string               `json:"product_id"`
	Quantity     int                  `json:"quantity"`
	DeliveryDate *time.Time           `json:"delivery_date"`
	Payment      domain.PaymentStatus `json:"payment"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" || req.ProductID == "" || req.Quantity <= 0 || req.DeliveryDate == nil {
		h.writeError(w, http.StatusBadRequest, "user_id, product_id, positive quantity and delivery_date are required")
		return
	}
	if req.Payment == "" {
		req.Payment = domain.PaymentUnpaid
	}
	if !domain.ValidPaymentStatus(req.Payment) {
		h.writeError(w, http.StatusBadRequest, "invalid payment status")
		return
	}

	product, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Error("failed to fetch product", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "could not load product")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusBadRequest, "unknown product")
		return
	}
	if !product.Enable {
		h.writeError(w, http.StatusBadRequest, "product is disabled")
		return
	}

	unit := product.Unit
	if unit == "" {
		unit = "N/A"
	}

	orderedAt := h.now()
	order := &domain.Order{
		UserID:       req.UserID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Price:        product.Price,
		Quantity:     req.Quantity,
		Unit:         unit,
		TotalPrice:   product.Price * float64(req.Quantity),
		OrderedAt:    &orderedAt,
		DeliveryDate: req.DeliveryDate,
		Payment:      req.Payment,
		Status:       domain.OrderStatusProcessing,
	}

	if err := h.store.Create(r.Context(), order); err != nil {
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not create order")
		return
	}

	if h.created != nil {
		event := domain.OrderCreatedEvent{
			OrderID:      order.ID,
			UserID:       order.UserID,
			ProductID:    order.ProductID,
			Quantity:     order.Quantity,
			TotalPrice:   order.TotalPrice,
			DeliveryDate: order.DeliveryDate,
			Timestamp:    orderedAt,
		}
		if err := h.created.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "user_id", order.UserID, "total_price", order.TotalPrice)
	h.writeJSON(w, http.StatusCreated, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.updateField(w, r, dashboard.FieldStatus, string(req.Status))
}

type updatePaymentRequest struct {
	Payment domain.PaymentStatus `json:"payment"`
}

func (h *Handler) HandleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.updateField(w, r, dashboard.FieldPayment, string(req.Payment))
}

// updateField runs the mutation through the coordinator: validate,
// write the single field remotely, then patch the in-memory set. A
// failed remote write surfaces here with the local set untouched; the
// caller may simply retry the request.
func (h *Handler) updateField(w http.ResponseWriter, r *http.Request, field, value string) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	views, err := h.joined(r.Context())
	if err != nil {
		h.logger.Error("failed to load orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load orders")
		return
	}

	coordinator := dashboard.NewCoordinator(h.store, views)
	previous, _ := coordinator.Snapshot().Find(id)

	var snap dashboard.Snapshot
	switch field {
	case dashboard.FieldStatus:
		snap, err = coordinator.SetStatus(r.Context(), id, domain.OrderStatus(value))
	case dashboard.FieldPayment:
		snap, err = coordinator.SetPayment(r.Context(), id, domain.PaymentStatus(value))
	}

	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrInvalidValue):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, dashboard.ErrUnknownOrder):
			h.writeError(w, http.StatusNotFound, "order not found")
		default:
			h.logger.Error("failed to update order", "error", err, "id", id, "field", field)
			h.writeError(w, http.StatusInternalServerError, "could not update order")
		}
		return
	}

	patched, _ := snap.Find(id)

	if h.updated != nil {
		oldValue := string(previous.Status)
		newValue := string(patched.Status)
		if field == dashboard.FieldPayment {
			oldValue = string(previous.Payment)
			newValue = string(patched.Payment)
		}
		event := domain.OrderUpdatedEvent{
			OrderID:   id,
			UserID:    patched.UserID,
			Field:     field,
			OldValue:  oldValue,
			NewValue:  newValue,
			Timestamp: h.now(),
		}
		if err := h.updated.Publish(r.Context(), id, event); err != nil {
			h.logger.Error("failed to publish order updated event", "error", err, "order_id", id)
		}
	}

	h.logger.Info("order updated", "order_id", id, "field", field, "value", value)
	h.writeJSON(w, http.StatusOK, patched)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
