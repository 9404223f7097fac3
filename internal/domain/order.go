package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known statuses,
// ignoring case. Any status may be written over any other; there is
// no transition graph.
func ValidOrderStatus(s OrderStatus) bool {
	switch OrderStatus(strings.ToLower(string(s))) {
	case OrderStatusProcessing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

func ValidPaymentStatus(p PaymentStatus) bool {
	switch PaymentStatus(strings.ToLower(string(p))) {
	case PaymentPaid, PaymentUnpaid:
		return true
	}
	return false
}

// Order is the stored order record. Price, ProductName and Unit are
// snapshots taken from the product at creation time; later product
// edits never touch them. TotalPrice is price times quantity at
// creation and is stored, not recomputed. OrderedAt is assigned by the
// server once and never mutated; only Status and Payment change after
// creation.
type Order struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	ProductID    string        `json:"product_id"`
	ProductName  string        `json:"product_name"`
	Price        float64       `json:"price"`
	Quantity     int           `json:"quantity"`
	Unit         string        `json:"unit"`
	TotalPrice   float64       `json:"total_price"`
	OrderedAt    *time.Time    `json:"ordered_at"`
	DeliveryDate *time.Time    `json:"delivery_date"`
	Payment      PaymentStatus `json:"payment"`
	Status       OrderStatus   `json:"status"`
}

// Delivered reports whether the order's status is delivered, ignoring
// case. Everything else, cancelled included, counts as a pending
// delivery.
func (o Order) Delivered() bool {
	return strings.EqualFold(string(o.Status), string(OrderStatusDelivered))
}

// Placeholders used when an order's user reference does not resolve.
const (
	GuestUserName    = "Guest User"
	GuestUserAddress = "Address"
)

// OrderView is an Order decorated with the referenced user's name and
// address at read time. It is a view, recomputed on every fetch, and
// never written back to the store.
type OrderView struct {
	Order
	UserName    string `json:"user_name"`
	UserAddress string `json:"user_address"`
}

// JoinOrders resolves each order's user reference against users,
// falling back to the guest placeholders for dangling references.
// Input order is preserved.
func JoinOrders(orders []Order, users []User) []OrderView {
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		view := OrderView{Order: o, UserName: GuestUserName, UserAddress: GuestUserAddress}
		if u, ok := byID[o.UserID]; ok {
			if u.Name != "" {
				view.UserName = u.Name
			}
			if u.Address != "" {
				view.UserAddress = u.Address
			}
		}
		views = append(views, view)
	}
	return views
}
