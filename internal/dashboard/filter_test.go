package dashboard

import (
	"reflect"
	"testing"
	"time"

	"github.com/arvindkr/storeops/internal/domain"
)

func named(id, userName string, orderedAt *time.Time) domain.OrderView {
	v := view(id, orderedAt, nil, 0, domain.OrderStatusProcessing)
	v.UserName = userName
	return v
}

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFilterOrders(t *testing.T) {
	orders := []domain.OrderView{
		named("o1", "Asha Patel", ts(2024, 6, 10, 9, 30)),
		named("o2", "Rahul Sharma", ts(2024, 6, 12, 14, 0)),
		named("o3", "Priya Shah", nil),
		named("o4", "ASHA VERMA", ts(2024, 6, 20, 23, 59)),
	}

	t.Run("empty query matches all", func(t *testing.T) {
		got := FilterOrders(orders, OrderQuery{})
		if len(got) != len(orders) {
			t.Errorf("expected %d orders, got %d", len(orders), len(got))
		}
	})

	t.Run("search is a case-insensitive substring", func(t *testing.T) {
		got := FilterOrders(orders, OrderQuery{Search: "asha"})
		if want := []string{"o1", "o4"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})

	t.Run("unranged query keeps orders without a timestamp", func(t *testing.T) {
		got := FilterOrders(orders, OrderQuery{Search: "sha"})
		if want := []string{"o1", "o2", "o3", "o4"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})

	t.Run("date range bounds normalize to whole days", func(t *testing.T) {
		got := FilterOrders(orders, OrderQuery{Start: day(2024, 6, 10), End: day(2024, 6, 20)})
		// o1 at 09:30 on the start day and o4 at 23:59 on the end day
		// both make the cut; o3 has no timestamp and is dropped.
		if want := []string{"o1", "o2", "o4"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})

	t.Run("open-ended range", func(t *testing.T) {
		got := FilterOrders(orders, OrderQuery{Start: day(2024, 6, 12)})
		if want := []string{"o2", "o4"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}

		got = FilterOrders(orders, OrderQuery{End: day(2024, 6, 11)})
		if want := []string{"o1"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})

	t.Run("search and range combine with AND", func(t *testing.T) {
		got := FilterOrders(orders, OrderQuery{Search: "asha", Start: day(2024, 6, 15)})
		if want := []string{"o4"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("expected %v, got %v", want, ids(got))
		}
	})
}
