package reporting

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SaleEvent is the push payload delivered when the shop floor confirms a
// sale. Delivery is at-least-once and unordered; ingestion must stay
// idempotent by order id.
type SaleEvent struct {
	OrderID       string           `json:"orderId"`
	Method        string           `json:"method" validate:"required"`
	PaymentStatus string           `json:"paymentStatus"`
	Status        string           `json:"status"`
	SupplierID    string           `json:"supplierId"`
	Amount        float64          `json:"amount" validate:"gte=0"`
	Currency      string           `json:"currency"`
	Items         []map[string]any `json:"items"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Order builds the synthetic canonical order for a live event so the same
// classification rules apply to pushed and pulled records. Events without an
// order id get a deterministic UUID derived from the payload, so duplicate
// deliveries of the same anonymous event still collapse to one order.
func (e SaleEvent) Order() Order {
	id := e.OrderID
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(e.Method+"|"+e.PaymentStatus+"|"+e.Timestamp.UTC().Format(time.RFC3339Nano))).String()
	}
	status := e.PaymentStatus
	if status == "" {
		status = e.Status
	}
	items := make([]OrderItem, 0, len(e.Items))
	for _, raw := range e.Items {
		items = append(items, normalizeItem(raw))
	}
	return Order{
		ID:     id,
		Status: "confirmed",
		Payment: PaymentInfo{
			Method:        e.Method,
			PaymentStatus: status,
			SupplierID:    e.SupplierID,
			Amount:        e.Amount,
			HasAmount:     true,
			Currency:      e.Currency,
			UpdatedAt:     e.Timestamp,
		},
		PaymentMethod: e.Method,
		TotalAmount:   e.Amount,
		HasTotal:      true,
		Items:         items,
		CreatedAt:     e.Timestamp,
		UpdatedAt:     e.Timestamp,
	}
}

// OrderSet is the live working set the aggregations read from: the pulled
// snapshot plus every accepted push event, deduplicated by order id with
// first-seen-wins semantics. Events that arrive before the snapshot are
// buffered and folded in once the snapshot lands, so the merge is
// commutative with respect to arrival order.
type OrderSet struct {
	mu      sync.Mutex
	ready   bool
	orders  []Order
	seen    map[string]struct{}
	pending []Order
}

// NewOrderSet returns an empty, snapshot-less set.
func NewOrderSet() *OrderSet {
	return &OrderSet{seen: make(map[string]struct{})}
}

// SetSnapshot replaces the pulled baseline and replays any buffered live
// events on top of it.
func (s *OrderSet) SetSnapshot(orders []Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = s.orders[:0]
	s.seen = make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if o.ID != "" {
			if _, dup := s.seen[o.ID]; dup {
				continue
			}
			s.seen[o.ID] = struct{}{}
		}
		s.orders = append(s.orders, o)
	}
	s.ready = true
	pending := s.pending
	s.pending = nil
	for _, o := range pending {
		s.mergeLocked(o)
	}
}

// Ingest merges one classified live order. Returns false when the order was
// already present (duplicate delivery) and nothing changed.
func (s *OrderSet) Ingest(o Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		for _, p := range s.pending {
			if p.ID == o.ID {
				return false
			}
		}
		s.pending = append(s.pending, o)
		return true
	}
	return s.mergeLocked(o)
}

func (s *OrderSet) mergeLocked(o Order) bool {
	if _, dup := s.seen[o.ID]; dup {
		return false
	}
	s.seen[o.ID] = struct{}{}
	s.orders = append([]Order{o}, s.orders...)
	return true
}

// Snapshot returns a copy of the current working set. Callers may hold it
// across an aggregation run without racing ingestion.
func (s *OrderSet) Snapshot() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Ready reports whether the pulled snapshot has landed.
func (s *OrderSet) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}
