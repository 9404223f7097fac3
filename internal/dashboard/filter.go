package dashboard

import (
	"strings"
	"time"

	"github.com/arvindkr/storeops/internal/domain"
	"github.com/arvindkr/storeops/internal/timewindow"
)

// OrderQuery filters the joined order list. Search is a
// case-insensitive substring match on the customer name; an empty term
// matches everything. Start and End are calendar days bounding
// OrderedAt, each optional; Start is taken at 00:00:00.000 and End at
// 23:59:59.999. Both predicates must hold.
type OrderQuery struct {
	Search string
	Start  *time.Time
	End    *time.Time
}

// FilterOrders returns the subsequence of orders matching q, in input
// order. Orders without an OrderedAt are excluded whenever a date
// bound is present.
func FilterOrders(orders []domain.OrderView, q OrderQuery) []domain.OrderView {
	term := strings.ToLower(q.Search)

	var start, end time.Time
	if q.Start != nil {
		start = timewindow.StartOfDay(*q.Start)
	}
	if q.End != nil {
		end = timewindow.EndOfDay(*q.End)
	}

	matched := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		if term != "" && !strings.Contains(strings.ToLower(o.UserName), term) {
			continue
		}
		if q.Start != nil || q.End != nil {
			if o.OrderedAt == nil {
				continue
			}
			if q.Start != nil && o.OrderedAt.Before(start) {
				continue
			}
			if q.End != nil && o.OrderedAt.After(end) {
				continue
			}
		}
		matched = append(matched, o)
	}
	return matched
}
