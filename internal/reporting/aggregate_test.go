package reporting

import (
	"reflect"
	"testing"
	"time"
)

func saleAt(id string, ts time.Time, amount float64, qty int) Order {
	return Order{
		ID:            id,
		Status:        "confirmed",
		PaymentMethod: "pay later",
		TotalAmount:   amount,
		HasTotal:      true,
		UpdatedAt:     ts,
		Items:         []OrderItem{{ProductID: "p1", Name: "Hammer", Quantity: qty, UnitPrice: amount / float64(qty)}},
	}
}

func TestAggregateSalesZeroFill(t *testing.T) {
	windowKeys := []string{"2025-06-W1", "2025-06-W2", "2025-06-W3"}
	orders := []Order{
		saleAt("a", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), 100, 1),
	}
	buckets := AggregateSales(orders, GranularityWeekly, ChannelAll, windowKeys)
	if len(buckets) != len(windowKeys) {
		t.Fatalf("expected %d buckets got %d", len(windowKeys), len(buckets))
	}
	if buckets[0].TotalSales != 100 || buckets[0].UnitsSold != 1 {
		t.Fatalf("first bucket = %+v", buckets[0])
	}
	for _, b := range buckets[1:] {
		if b.TotalSales != 0 || b.UnitsSold != 0 {
			t.Fatalf("expected zero-filled bucket, got %+v", b)
		}
	}
}

func TestAggregateSalesMergesSameWeek(t *testing.T) {
	// Two sales five calendar days apart, same week-of-month bucket.
	orders := []Order{
		saleAt("a", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), 200, 2),
		saleAt("b", time.Date(2025, 6, 6, 20, 0, 0, 0, time.UTC), 300, 3),
	}
	buckets := AggregateSales(orders, GranularityWeekly, ChannelAll, []string{"2025-06-W1"})
	if buckets[0].TotalSales != 500 || buckets[0].UnitsSold != 5 {
		t.Fatalf("merged bucket = %+v", buckets[0])
	}
	if buckets[0].Label != "W1 Jun" {
		t.Fatalf("unexpected label %q", buckets[0].Label)
	}
}

func TestAggregateSalesChannelFilter(t *testing.T) {
	online := Order{
		ID:     "on",
		Status: "confirmed",
		Payment: PaymentInfo{
			Method:        "stripe",
			PaymentStatus: "paid",
			UpdatedAt:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		TotalAmount: 80,
		HasTotal:    true,
	}
	shop := saleAt("shop", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 40, 1)
	pending := saleAt("pending", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 999, 9)
	pending.Status = "pending"

	keys := []string{"2025-06-W1"}
	all := AggregateSales([]Order{online, shop, pending}, GranularityWeekly, ChannelAll, keys)
	if all[0].TotalSales != 120 {
		t.Fatalf("all-channel total = %v", all[0].TotalSales)
	}
	onlineOnly := AggregateSales([]Order{online, shop}, GranularityWeekly, ChannelOnline, keys)
	if onlineOnly[0].TotalSales != 80 {
		t.Fatalf("online total = %v", onlineOnly[0].TotalSales)
	}
	shopOnly := AggregateSales([]Order{online, shop}, GranularityWeekly, ChannelPayLater, keys)
	if shopOnly[0].TotalSales != 40 {
		t.Fatalf("pay-later total = %v", shopOnly[0].TotalSales)
	}
}

func TestAggregateSalesMonthly(t *testing.T) {
	orders := []Order{
		saleAt("a", time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), 10, 1),
		saleAt("b", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 20, 2),
	}
	buckets := AggregateSales(orders, GranularityMonthly, ChannelAll, []string{"2025-05", "2025-06"})
	if buckets[0].TotalSales != 10 || buckets[1].TotalSales != 20 {
		t.Fatalf("monthly split wrong: %+v", buckets)
	}
}

func TestAggregateSalesSkipsUndatedOrders(t *testing.T) {
	undated := saleAt("u", time.Time{}, 50, 1)
	undated.UpdatedAt = time.Time{}
	buckets := AggregateSales([]Order{undated}, GranularityWeekly, ChannelAll, []string{"2025-06-W1"})
	if buckets[0].TotalSales != 0 {
		t.Fatalf("undated order must not be bucketed: %+v", buckets[0])
	}
}

func TestAggregateSalesIdempotent(t *testing.T) {
	orders := []Order{
		saleAt("a", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 100, 1),
		saleAt("b", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 60, 2),
	}
	keys := []string{"2025-06-W1", "2025-06-W2"}
	first := AggregateSales(orders, GranularityWeekly, ChannelAll, keys)
	second := AggregateSales(orders, GranularityWeekly, ChannelAll, keys)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not idempotent: %+v vs %+v", first, second)
	}
}
