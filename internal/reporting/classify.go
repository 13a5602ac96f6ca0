package reporting

import (
	"math"
	"strings"
	"time"
)

// The classifier decides which orders count as recognized retail sales.
// Online and pay-at-shop eligibility are mutually exclusive by construction:
// an online sale requires method "stripe", a pay-later sale requires the
// resolved method to read "pay later".

func normToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// IsOnlineEligible reports whether an order is a recognized online sale:
// confirmed, paid through stripe, and not supplier-linked. A stripe payment
// carrying a supplier id is a B2B settlement, not a retail sale.
func IsOnlineEligible(o Order) bool {
	return normToken(o.Status) == "confirmed" &&
		normToken(o.Payment.Method) == "stripe" &&
		normToken(o.Payment.PaymentStatus) == "paid" &&
		o.Payment.SupplierID == ""
}

// IsPayLaterEligible reports whether an order is a recognized pay-at-shop
// sale. The payment method may live at the top level or inside the payment
// block; the top-level value wins when both are present.
func IsPayLaterEligible(o Order) bool {
	if normToken(o.Status) != "confirmed" {
		return false
	}
	method := o.PaymentMethod
	if method == "" {
		method = o.Payment.Method
	}
	return normToken(method) == "pay later"
}

// IsRecognizedSale reports whether an order counts toward any sales
// aggregate.
func IsRecognizedSale(o Order) bool {
	return IsOnlineEligible(o) || IsPayLaterEligible(o)
}

// matchesChannel applies the channel filter on top of sale recognition.
func matchesChannel(o Order, ch Channel) bool {
	switch ch {
	case ChannelOnline:
		return IsOnlineEligible(o)
	case ChannelPayLater:
		return IsPayLaterEligible(o)
	default:
		return IsRecognizedSale(o)
	}
}

// SaleEventTime resolves the timestamp that represents the sale event.
// Online sales prefer the payment capture time (payment updatedAt, then
// createdAt) before falling back to order timestamps; pay-later sales use
// the order confirmation time directly. Returns false when no usable
// timestamp exists, in which case the order cannot be bucketed.
func SaleEventTime(o Order, online bool) (time.Time, bool) {
	candidates := []time.Time{o.UpdatedAt, o.CreatedAt}
	if online {
		candidates = []time.Time{o.Payment.UpdatedAt, o.Payment.CreatedAt, o.UpdatedAt, o.CreatedAt}
	}
	for _, t := range candidates {
		if !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

// SaleAmount returns the order's recognized sale amount. Normalization has
// already collapsed totalAmount/total/paymentInfo.amount; anything
// non-finite degrades to zero rather than poisoning an aggregate.
func SaleAmount(o Order) float64 {
	if !o.HasTotal || math.IsNaN(o.TotalAmount) || math.IsInf(o.TotalAmount, 0) {
		return 0
	}
	return o.TotalAmount
}
