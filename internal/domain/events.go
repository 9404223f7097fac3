package domain

import "time"

type OrderCreatedEvent struct {
	OrderID      string     `json:"order_id"`
	UserID       string     `json:"user_id"`
	ProductID    string     `json:"product_id"`
	Quantity     int        `json:"quantity"`
	TotalPrice   float64    `json:"total_price"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Timestamp    time.Time  `json:"timestamp"`
}

// OrderUpdatedEvent records a single-field mutation. Field is either
// "status" or "payment".
type OrderUpdatedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Timestamp time.Time `json:"timestamp"`
}
