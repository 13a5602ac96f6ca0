package reporting

import (
	"math"
	"strings"
	"time"
)

// Channel selects which sales channel an aggregation covers.
type Channel string

const (
	ChannelAll      Channel = "all"
	ChannelOnline   Channel = "online"
	ChannelPayLater Channel = "pay_later"
)

// Granularity selects the calendar bucket size for a sales series.
type Granularity string

const (
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// PaymentInfo carries the payment block attached to an order by the
// commerce upstream. SupplierID is set on B2B settlements only.
type PaymentInfo struct {
	Method        string    `json:"method"`
	PaymentStatus string    `json:"payment_status"`
	SupplierID    string    `json:"supplier_id"`
	Amount        float64   `json:"amount"`
	HasAmount     bool      `json:"has_amount"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderItem is a single order line after normalization.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is the canonical order shape used by the reporting engine. It is
// produced once by NormalizeOrder; downstream code never re-implements the
// upstream field fallbacks.
type Order struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	Payment       PaymentInfo `json:"payment"`
	TotalAmount   float64     `json:"total_amount"`
	HasTotal      bool        `json:"has_total"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// AggregateBucket is one calendar slice of a sales series.
type AggregateBucket struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	TotalSales float64 `json:"total_sales"`
	UnitsSold  int     `json:"units_sold"`
}

// ProfitTotals holds rolling profit windows. The windows are independent
// boundary tests against "now", not nested subtractions of each other.
type ProfitTotals struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Total   float64 `json:"total"`
}

// ProductProfit is the per-product slice of a profit report.
type ProductProfit struct {
	Key    string       `json:"key"`
	Label  string       `json:"label"`
	Totals ProfitTotals `json:"totals"`
}

// ProfitReport is the full output of the profit engine.
type ProfitReport struct {
	Totals            ProfitTotals    `json:"totals"`
	PerProduct        []ProductProfit `json:"per_product"`
	MissingCostLabels []string        `json:"missing_cost_labels"`
}

// NormalizeOrder canonicalizes a raw upstream order document. The commerce
// API is loose about field placement (product ids under five different keys,
// payment method top-level or nested, three candidate amount fields); this
// adapter resolves each ambiguity once, first non-empty wins.
func NormalizeOrder(raw map[string]any) Order {
	o := Order{
		ID:            stringAt(raw, "id", "_id", "orderId"),
		Status:        stringAt(raw, "status"),
		PaymentMethod: stringAt(raw, "paymentMethod"),
		CreatedAt:     timeAt(raw, "createdAt"),
		UpdatedAt:     timeAt(raw, "updatedAt"),
	}

	if pi, ok := raw["paymentInfo"].(map[string]any); ok {
		o.Payment = PaymentInfo{
			Method:        stringAt(pi, "method"),
			PaymentStatus: stringAt(pi, "paymentStatus"),
			SupplierID:    stringAt(pi, "supplierId"),
			Currency:      stringAt(pi, "currency"),
			CreatedAt:     timeAt(pi, "createdAt"),
			UpdatedAt:     timeAt(pi, "updatedAt"),
		}
		o.Payment.Amount, o.Payment.HasAmount = numberAt(pi, "amount")
	}

	if amount, ok := numberAt(raw, "totalAmount"); ok {
		o.TotalAmount, o.HasTotal = amount, true
	} else if amount, ok := numberAt(raw, "total"); ok {
		o.TotalAmount, o.HasTotal = amount, true
	} else if o.Payment.HasAmount {
		o.TotalAmount, o.HasTotal = o.Payment.Amount, true
	}

	if items, ok := raw["items"].([]any); ok {
		o.Items = make([]OrderItem, 0, len(items))
		for _, entry := range items {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			o.Items = append(o.Items, normalizeItem(item))
		}
	}
	return o
}

// Document renders the order back into the upstream document shape, so a
// journaled live event decodes identically on the next snapshot pull.
func (o Order) Document() map[string]any {
	doc := map[string]any{
		"id":          o.ID,
		"status":      o.Status,
		"totalAmount": o.TotalAmount,
	}
	if o.PaymentMethod != "" {
		doc["paymentMethod"] = o.PaymentMethod
	}
	if !o.CreatedAt.IsZero() {
		doc["createdAt"] = o.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !o.UpdatedAt.IsZero() {
		doc["updatedAt"] = o.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	pi := map[string]any{
		"method":        o.Payment.Method,
		"paymentStatus": o.Payment.PaymentStatus,
	}
	if o.Payment.SupplierID != "" {
		pi["supplierId"] = o.Payment.SupplierID
	}
	if o.Payment.HasAmount {
		pi["amount"] = o.Payment.Amount
	}
	if o.Payment.Currency != "" {
		pi["currency"] = o.Payment.Currency
	}
	if !o.Payment.CreatedAt.IsZero() {
		pi["createdAt"] = o.Payment.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !o.Payment.UpdatedAt.IsZero() {
		pi["updatedAt"] = o.Payment.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	doc["paymentInfo"] = pi

	items := make([]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"productId":   item.ProductID,
			"productName": item.Name,
			"quantity":    item.Quantity,
			"price":       item.UnitPrice,
		})
	}
	doc["items"] = items
	return doc
}

func normalizeItem(item map[string]any) OrderItem {
	out := OrderItem{
		ProductID: stringAt(item, "productId", "_id"),
		Name:      stringAt(item, "productName", "name", "title"),
	}
	if out.ProductID == "" {
		if product, ok := item["product"].(map[string]any); ok {
			out.ProductID = stringAt(product, "_id")
		}
	}
	if out.ProductID == "" {
		out.ProductID = stringAt(item, "sku", "id")
	}
	if qty, ok := numberAt(item, "quantity"); ok && qty > 0 {
		out.Quantity = int(qty)
	}
	if price, ok := numberAt(item, "price"); ok {
		out.UnitPrice = price
	}
	return out
}

func stringAt(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func numberAt(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return 0, false
	default:
		return 0, false
	}
}

// timeAt accepts RFC3339 strings and epoch-millisecond numbers, the two
// timestamp encodings the upstream emits. Anything else reads as zero.
func timeAt(m map[string]any, key string) time.Time {
	switch v := m[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v)); err == nil {
			return t
		}
	case float64:
		if v > 0 {
			return time.UnixMilli(int64(v))
		}
	}
	return time.Time{}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
