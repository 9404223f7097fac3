package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/timewindow"
)

// OrderSource is the read side of the document store the dashboard
// derives its views from.
type OrderSource interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type UserSource interface {
	List(ctx context.Context) ([]domain.User, error)
}

// Handler serves the dashboard views: headline stats, bucket counts
// and the active bucket's orders. Every request is a one-shot fetch of
// the full collections followed by pure recomputation; nothing is
// cached between requests.
type Handler struct {
	orders OrderSource
	users  UserSource
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(orders OrderSource, users UserSource, logger *slog.Logger) *Handler {
	return &Handler{
		orders: orders,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func (h *Handler) joined(ctx context.Context) ([]domain.OrderView, error) {
	users, err := h.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	orders, err := h.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	return domain.JoinOrders(orders, users), nil
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	views, err := h.joined(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard data", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load dashboard data")
		return
	}

	h.writeJSON(w, http.StatusOK, Aggregate(views, timewindow.At(h.now())))
}

func (h *Handler) HandleBucketCounts(w http.ResponseWriter, r *http.Request) {
	views, err := h.joined(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard data", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load dashboard data")
		return
	}

	h.writeJSON(w, http.StatusOK, Categorize(views, timewindow.At(h.now())).Counts())
}

func (h *Handler) HandleBucket(w http.ResponseWriter, r *http.Request) {
	name := Bucket(r.PathValue("bucket"))

	views, err := h.joined(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard data", "error", err)
		h.writeError(w, http.StatusInternalServerError, "could not load dashboard data")
		return
	}

	orders, ok := Categorize(views, timewindow.At(h.now())).Select(name)
	if !ok {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown bucket %q", name))
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
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
