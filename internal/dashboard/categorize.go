// Package dashboard holds the derived views the ops dashboard is built
// from: time-window buckets, headline stats, list filtering, and the
// coordinator that applies single-field order mutations. Everything
// except the coordinator is a pure function over an order snapshot.
package dashboard

import (
	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/timewindow"
)

// Bucket names one of the five time-window order subsets. Exactly one
// bucket is active for display at a time; switching is a re-filter of
// the already-fetched set, never a new fetch.
type Bucket string

const (
	BucketTodaysOrders        Bucket = "todaysOrders"
	BucketTodaysDeliveries    Bucket = "todaysDeliveries"
	BucketThisWeekDeliveries  Bucket = "thisWeekDeliveries"
	BucketThisMonthDeliveries Bucket = "thisMonthDeliveries"
	BucketUpcoming            Bucket = "upcoming"
)

// Buckets partitions an order set into the five windows. The buckets
// overlap: an order placed and delivered today appears in both
// TodaysOrders and TodaysDeliveries. Orders missing the relevant
// timestamp are left out of that bucket. Each slice preserves the
// input order.
type Buckets struct {
	TodaysOrders        []domain.OrderView `json:"todays_orders"`
	TodaysDeliveries    []domain.OrderView `json:"todays_deliveries"`
	ThisWeekDeliveries  []domain.OrderView `json:"this_week_deliveries"`
	ThisMonthDeliveries []domain.OrderView `json:"this_month_deliveries"`
	Upcoming            []domain.OrderView `json:"upcoming"`
}

// BucketCounts is the per-bucket tally shown on the dashboard tabs.
type BucketCounts struct {
	TodaysOrders        int `json:"todays_orders"`
	TodaysDeliveries    int `json:"todays_deliveries"`
	ThisWeekDeliveries  int `json:"this_week_deliveries"`
	ThisMonthDeliveries int `json:"this_month_deliveries"`
	Upcoming            int `json:"upcoming"`
}

// Categorize buckets orders using the given windows. Membership per
// bucket:
//
//   - TodaysOrders: ordered on or after today's midnight (no upper bound)
//   - TodaysDeliveries: delivery within today's calendar day
//   - ThisWeekDeliveries: delivery within the Sunday-to-Saturday week
//   - ThisMonthDeliveries: delivery within the calendar month
//   - Upcoming: delivery strictly after today's end
func Categorize(orders []domain.OrderView, w timewindow.Windows) Buckets {
	var b Buckets
	for _, o := range orders {
		if o.OrderedAt != nil && w.Today.Contains(*o.OrderedAt) {
			b.TodaysOrders = append(b.TodaysOrders, o)
		}
		if o.DeliveryDate == nil {
			continue
		}
		d := *o.DeliveryDate
		if w.TodayDeliveries.Contains(d) {
			b.TodaysDeliveries = append(b.TodaysDeliveries, o)
		}
		if w.ThisWeek.Contains(d) {
			b.ThisWeekDeliveries = append(b.ThisWeekDeliveries, o)
		}
		if w.ThisMonth.Contains(d) {
			b.ThisMonthDeliveries = append(b.ThisMonthDeliveries, o)
		}
		if w.Upcoming.Contains(d) {
			b.Upcoming = append(b.Upcoming, o)
		}
	}
	return b
}

// Counts returns the size of each bucket.
func (b Buckets) Counts() BucketCounts {
	return BucketCounts{
		TodaysOrders:        len(b.TodaysOrders),
		TodaysDeliveries:    len(b.TodaysDeliveries),
		ThisWeekDeliveries:  len(b.ThisWeekDeliveries),
		ThisMonthDeliveries: len(b.ThisMonthDeliveries),
		Upcoming:            len(b.Upcoming),
	}
}

// Select returns the named bucket's orders, or false for an unknown
// bucket name. A nil slice comes back as an empty one so callers can
// serialize it directly.
func (b Buckets) Select(name Bucket) ([]domain.OrderView, bool) {
	var orders []domain.OrderView
	switch name {
	case BucketTodaysOrders:
		orders = b.TodaysOrders
	case BucketTodaysDeliveries:
		orders = b.TodaysDeliveries
	case BucketThisWeekDeliveries:
		orders = b.ThisWeekDeliveries
	case BucketThisMonthDeliveries:
		orders = b.ThisMonthDeliveries
	case BucketUpcoming:
		orders = b.Upcoming
	default:
		return nil, false
	}
	if orders == nil {
		orders = []domain.OrderView{}
	}
	return orders, true
}
