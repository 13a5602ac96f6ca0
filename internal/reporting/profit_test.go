package reporting

import (
	"math"
	"testing"
	"time"
)

func TestComputeProfitPayLaterExample(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	order := Order{
		ID:            "o1",
		Status:        "Confirmed",
		PaymentMethod: "Pay Later",
		TotalAmount:   1500,
		HasTotal:      true,
		UpdatedAt:     now.Add(-time.Hour),
		Items: []OrderItem{
			{ProductID: "p1", Name: "Hammer", Quantity: 2, UnitPrice: 750},
		},
	}
	idx := BuildCostIndex(nil, nil)
	report := ComputeProfit([]Order{order}, ChannelAll, idx, now)

	if report.Totals.Total != 1500 {
		t.Fatalf("expected total 1500 got %v", report.Totals.Total)
	}
	if report.Totals.Daily != 1500 || report.Totals.Weekly != 1500 || report.Totals.Monthly != 1500 {
		t.Fatalf("rolling windows wrong: %+v", report.Totals)
	}
	if len(report.MissingCostLabels) != 1 || report.MissingCostLabels[0] != "Hammer" {
		t.Fatalf("missing cost labels = %v", report.MissingCostLabels)
	}
}

func TestComputeProfitIndependentWindows(t *testing.T) {
	// The trailing-7-day window can reach across a month boundary that the
	// calendar-month window does not: windows are independent tests, not a
	// nesting.
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	order := Order{
		ID:            "o1",
		Status:        "confirmed",
		PaymentMethod: "pay later",
		TotalAmount:   100,
		HasTotal:      true,
		UpdatedAt:     time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC),
		Items:         []OrderItem{{ProductID: "p1", Name: "Pliers", Quantity: 1, UnitPrice: 100}},
	}
	report := ComputeProfit([]Order{order}, ChannelAll, BuildCostIndex(nil, nil), now)
	if report.Totals.Daily != 0 {
		t.Fatalf("daily should be 0, got %v", report.Totals.Daily)
	}
	if report.Totals.Weekly != 100 {
		t.Fatalf("weekly should include May 30, got %v", report.Totals.Weekly)
	}
	if report.Totals.Monthly != 0 {
		t.Fatalf("monthly must exclude the previous month, got %v", report.Totals.Monthly)
	}
	if report.Totals.Total != 100 {
		t.Fatalf("all-time total = %v", report.Totals.Total)
	}
}

func TestComputeProfitNegativeAndCost(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	catalog := []SupplierProduct{{ID: "sp1", Name: "Drill", Price: 500, HasPrice: true}}
	products := []Product{{ID: "p1", Name: "Drill", SupplierProductID: "sp1"}}
	idx := BuildCostIndex(products, catalog)

	order := Order{
		ID:            "o1",
		Status:        "confirmed",
		PaymentMethod: "pay later",
		HasTotal:      true,
		TotalAmount:   400,
		UpdatedAt:     now,
		Items:         []OrderItem{{ProductID: "p1", Name: "Drill", Quantity: 1, UnitPrice: 400}},
	}
	report := ComputeProfit([]Order{order}, ChannelAll, idx, now)
	if report.Totals.Total != -100 {
		t.Fatalf("selling below cost should yield negative profit, got %v", report.Totals.Total)
	}
	if len(report.MissingCostLabels) != 0 {
		t.Fatalf("resolved cost must not be flagged missing: %v", report.MissingCostLabels)
	}
}

func TestComputeProfitRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	orders := []Order{
		{
			ID: "o1", Status: "confirmed", PaymentMethod: "pay later",
			HasTotal: true, TotalAmount: 100, UpdatedAt: now,
			Items: []OrderItem{
				{ProductID: "p1", Name: "Hammer", Quantity: 3, UnitPrice: 33.33},
				{ProductID: "p2", Name: "Screws", Quantity: 7, UnitPrice: 4.15},
			},
		},
		{
			ID: "o2", Status: "confirmed", PaymentMethod: "pay later",
			HasTotal: true, TotalAmount: 50, UpdatedAt: now.AddDate(0, -2, 0),
			Items: []OrderItem{
				{ProductID: "p1", Name: "Hammer", Quantity: 1, UnitPrice: 33.33},
			},
		},
	}
	report := ComputeProfit(orders, ChannelAll, BuildCostIndex(nil, nil), now)
	var sum float64
	for _, p := range report.PerProduct {
		sum += p.Totals.Total
	}
	if math.Abs(sum-report.Totals.Total) >= 0.01 {
		t.Fatalf("per-product totals %v do not sum to %v", sum, report.Totals.Total)
	}
}

func TestComputeProfitSortOrder(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	orders := []Order{{
		ID: "o1", Status: "confirmed", PaymentMethod: "pay later",
		HasTotal: true, TotalAmount: 100, UpdatedAt: now,
		Items: []OrderItem{
			{ProductID: "small", Name: "Washer", Quantity: 1, UnitPrice: 2},
			{ProductID: "big", Name: "Generator", Quantity: 1, UnitPrice: 900},
		},
	}}
	report := ComputeProfit(orders, ChannelAll, BuildCostIndex(nil, nil), now)
	if len(report.PerProduct) != 2 || report.PerProduct[0].Key != "big" {
		t.Fatalf("per-product not sorted by descending total: %+v", report.PerProduct)
	}
}

func TestComputeProfitSkipsZeroQuantityAndZeroProfit(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	orders := []Order{{
		ID: "o1", Status: "confirmed", PaymentMethod: "pay later",
		HasTotal: true, TotalAmount: 0, UpdatedAt: now,
		Items: []OrderItem{
			{ProductID: "p1", Name: "Freebie", Quantity: 0, UnitPrice: 10},
			{ProductID: "p2", Name: "Zero", Quantity: 2, UnitPrice: 0},
		},
	}}
	report := ComputeProfit(orders, ChannelAll, BuildCostIndex(nil, nil), now)
	if len(report.PerProduct) != 0 {
		t.Fatalf("zero-contribution lines must not create product rows: %+v", report.PerProduct)
	}
	if report.Totals.Total != 0 {
		t.Fatalf("expected zero totals, got %+v", report.Totals)
	}
}
