package reporting

// AggregateSales folds a classified order set into per-bucket sales
// accumulators and projects them onto windowKeys. The output always has
// exactly len(windowKeys) entries, zero-filled where no activity landed, so
// a chart rendered from it never loses continuity. Orders that are not
// recognized sales, fail the channel filter, or carry no usable sale
// timestamp are skipped; nothing aborts the fold.
func AggregateSales(orders []Order, granularity Granularity, ch Channel, windowKeys []string) []AggregateBucket {
	type acc struct {
		amount float64
		units  int
	}
	byKey := make(map[string]*acc, len(windowKeys))

	for _, o := range orders {
		if !matchesChannel(o, ch) {
			continue
		}
		ts, ok := SaleEventTime(o, IsOnlineEligible(o))
		if !ok {
			continue
		}
		key := MonthKeyOf(ts)
		if granularity == GranularityWeekly {
			key = WeekKeyOf(ts)
		}
		entry := byKey[key]
		if entry == nil {
			entry = &acc{}
			byKey[key] = entry
		}
		entry.amount += SaleAmount(o)
		for _, item := range o.Items {
			if item.Quantity > 0 {
				entry.units += item.Quantity
			}
		}
	}

	buckets := make([]AggregateBucket, 0, len(windowKeys))
	for _, key := range windowKeys {
		bucket := AggregateBucket{Key: key, Label: key}
		if granularity == GranularityWeekly {
			bucket.Label = WeekLabel(key)
		}
		if entry := byKey[key]; entry != nil {
			bucket.TotalSales = round2(entry.amount)
			bucket.UnitsSold = entry.units
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}
