package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arvindkr/storeops/internal/domain"
)

// SMSSender is the outbound notification channel.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// UserLookup resolves the customer a notification goes to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// DeliveryNotifier consumes order.updated events and texts the
// customer when their order lands on delivered. Notification failures
// are logged, not returned: a missed text must never wedge the
// consumer on one message.
type DeliveryNotifier struct {
	users  UserLookup
	sms    SMSSender
	logger *slog.Logger
}

func NewDeliveryNotifier(users UserLookup, sms SMSSender, logger *slog.Logger) *DeliveryNotifier {
	return &DeliveryNotifier{
		users:  users,
		sms:    sms,
		logger: logger,
	}
}

func (h *DeliveryNotifier) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderUpdatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order updated event: %w", err)
	}

	if event.Field != "status" || !strings.EqualFold(event.NewValue, string(domain.OrderStatusDelivered)) {
		return nil
	}

	h.logger.Info("order delivered, notifying customer", "order_id", event.OrderID, "user_id", event.UserID)

	user, err := h.users.GetByID(ctx, event.UserID)
	if err != nil {
		h.logger.Error("failed to look up user", "error", err, "user_id", event.UserID)
		return nil
	}
	if user == nil || user.Phone == "" {
		h.logger.Info("no phone number for user, skipping notification", "user_id", event.UserID)
		return nil
	}

	message := fmt.Sprintf("Your order %s has been delivered. Thank you for shopping with us!", event.OrderID)
	if err := h.sms.Send(ctx, user.Phone, message); err != nil {
		h.logger.Error("failed to send delivery sms", "error", err, "order_id", event.OrderID)
		return nil
	}

	h.logger.Info("delivery sms sent", "order_id", event.OrderID, "phone", user.Phone)
	return nil
}
