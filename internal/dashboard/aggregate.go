package dashboard

import (
	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/timewindow"
)

// Stats are the dashboard headline numbers, always derived fresh from
// the full order set. PendingDeliveries counts every order whose
// status is not delivered; cancelled orders stay in that count.
type Stats struct {
	TotalOrders       int     `json:"total_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	PendingDeliveries int     `json:"pending_deliveries"`
	TodaysOrders      int     `json:"todays_orders"`
}

// Aggregate reduces the order set into Stats. Orders with a missing
// total price contribute zero to revenue. TodaysOrders applies the
// same predicate as the todaysOrders bucket.
func Aggregate(orders []domain.OrderView, w timewindow.Windows) Stats {
	s := Stats{TotalOrders: len(orders)}
	for _, o := range orders {
		s.TotalRevenue += o.TotalPrice
		if !o.Delivered() {
			s.PendingDeliveries++
		}
		if o.OrderedAt != nil && w.Today.Contains(*o.OrderedAt) {
			s.TodaysOrders++
		}
	}
	return s
}
