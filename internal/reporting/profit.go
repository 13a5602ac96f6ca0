package reporting

import (
	"math"
	"sort"
	"time"
)

type profitAcc struct {
	daily   float64
	weekly  float64
	monthly float64
	total   float64
}

func (a *profitAcc) add(profit float64, ts time.Time, dayStart, weekStart, monthStart time.Time) {
	// Window membership uses independent boundary tests; an event can sit
	// inside the trailing week but outside the calendar month.
	if !ts.Before(dayStart) {
		a.daily += profit
	}
	if !ts.Before(weekStart) {
		a.weekly += profit
	}
	if !ts.Before(monthStart) {
		a.monthly += profit
	}
	a.total += profit
}

func (a *profitAcc) totals() ProfitTotals {
	return ProfitTotals{
		Daily:   round2(a.daily),
		Weekly:  round2(a.weekly),
		Monthly: round2(a.monthly),
		Total:   round2(a.total),
	}
}

// ComputeProfit walks the line items of every recognized, channel-matching
// order, resolves unit cost through the index and accumulates signed profit
// globally and per product. Amounts accumulate in full precision and are
// rounded once on the way out. Products whose cost could not be resolved
// still contribute profit against assumed-zero cost; their display names are
// collected once into MissingCostLabels for a combined diagnostic.
func ComputeProfit(orders []Order, ch Channel, idx *CostIndex, now time.Time) ProfitReport {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	global := &profitAcc{}
	perProduct := make(map[string]*profitAcc)
	labels := make(map[string]string)
	missing := make(map[string]struct{})

	for _, o := range orders {
		if !matchesChannel(o, ch) {
			continue
		}
		ts, ok := SaleEventTime(o, IsOnlineEligible(o))
		if !ok {
			continue
		}
		for _, item := range o.Items {
			if item.Quantity <= 0 {
				continue
			}
			key := item.ProductID
			label := item.Name
			if label == "" {
				label = key
			}
			if key == "" {
				key = "unknown"
				if label == "" {
					label = "Unknown product"
				}
			}
			cost, found := idx.Lookup(item.ProductID, item.Name)
			if !found {
				missing[label] = struct{}{}
			}
			lineProfit := (item.UnitPrice - cost) * float64(item.Quantity)
			if lineProfit == 0 || math.IsNaN(lineProfit) || math.IsInf(lineProfit, 0) {
				continue
			}
			global.add(lineProfit, ts, dayStart, weekStart, monthStart)
			acc := perProduct[key]
			if acc == nil {
				acc = &profitAcc{}
				perProduct[key] = acc
			}
			acc.add(lineProfit, ts, dayStart, weekStart, monthStart)
			labels[key] = label
		}
	}

	report := ProfitReport{
		Totals:     global.totals(),
		PerProduct: make([]ProductProfit, 0, len(perProduct)),
	}
	for key, acc := range perProduct {
		report.PerProduct = append(report.PerProduct, ProductProfit{
			Key:    key,
			Label:  labels[key],
			Totals: acc.totals(),
		})
	}
	sort.Slice(report.PerProduct, func(i, j int) bool {
		a, b := report.PerProduct[i], report.PerProduct[j]
		if a.Totals.Total != b.Totals.Total {
			return a.Totals.Total > b.Totals.Total
		}
		return a.Label < b.Label
	})

	report.MissingCostLabels = make([]string, 0, len(missing))
	for label := range missing {
		report.MissingCostLabels = append(report.MissingCostLabels, label)
	}
	sort.Strings(report.MissingCostLabels)
	return report
}
