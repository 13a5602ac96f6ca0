package reporting

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockRepo struct {
	orders        []Order
	orderCalls    int
	products      []Product
	productCalls  int
	catalog       []SupplierProduct
	catalogCalls  int
	journal       map[string][]byte
	journalErr    error
	journalCalls  int
	ordersErr     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{journal: make(map[string][]byte)}
}

func (m *mockRepo) Orders(ctx context.Context) ([]Order, error) {
	m.orderCalls++
	return m.orders, m.ordersErr
}

func (m *mockRepo) Products(ctx context.Context) ([]Product, error) {
	m.productCalls++
	return m.products, nil
}

func (m *mockRepo) SupplierProducts(ctx context.Context) ([]SupplierProduct, error) {
	m.catalogCalls++
	return m.catalog, nil
}

func (m *mockRepo) RecordSaleEvent(ctx context.Context, orderID string, payload []byte) error {
	m.journalCalls++
	if m.journalErr != nil {
		return m.journalErr
	}
	if _, dup := m.journal[orderID]; dup {
		return ErrDuplicateEvent
	}
	m.journal[orderID] = payload
	return nil
}

func newTestService(t *testing.T, repo Repository, clock Clock) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache, clock)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestSalesSeriesCaches(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.orders = []Order{
		saleAt("a", now.Add(-time.Hour), 250, 2),
	}
	svc, cleanup := newTestService(t, repo, fixedClock(now))
	defer cleanup()

	ctx := context.Background()
	filter := SalesFilter{Granularity: GranularityWeekly, Channel: ChannelAll, Window: 7}
	buckets, err := svc.SalesSeries(ctx, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets got %d", len(buckets))
	}
	if buckets[6].TotalSales != 250 {
		t.Fatalf("current bucket = %+v", buckets[6])
	}
	if repo.orderCalls != 1 {
		t.Fatalf("expected 1 snapshot pull, got %d", repo.orderCalls)
	}

	// Second call should hit cache; the working set is also warm.
	if _, err := svc.SalesSeries(ctx, filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.orderCalls != 1 {
		t.Fatalf("expected cached series, snapshot pulled %d times", repo.orderCalls)
	}
}

func TestProfitReportUsesCostIndex(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	repo.orders = []Order{{
		ID: "o1", Status: "confirmed", PaymentMethod: "pay later",
		HasTotal: true, TotalAmount: 200, UpdatedAt: now.Add(-time.Hour),
		Items: []OrderItem{{ProductID: "p1", Name: "Drill", Quantity: 1, UnitPrice: 200}},
	}}
	repo.products = []Product{{ID: "p1", Name: "Drill", SupplierProductID: "sp1"}}
	repo.catalog = []SupplierProduct{{ID: "sp1", Name: "Drill", Price: 120, HasPrice: true}}

	svc, cleanup := newTestService(t, repo, fixedClock(now))
	defer cleanup()

	report, err := svc.ProfitReport(context.Background(), ProfitFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Totals.Total != 80 {
		t.Fatalf("expected profit 80 got %v", report.Totals.Total)
	}
	if len(report.MissingCostLabels) != 0 {
		t.Fatalf("cost resolved, no diagnostics expected: %v", report.MissingCostLabels)
	}
}

func TestIngestSaleEventBumpsCache(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	svc, cleanup := newTestService(t, repo, fixedClock(now))
	defer cleanup()

	ctx := context.Background()
	filter := SalesFilter{Granularity: GranularityWeekly, Window: 7}
	if _, err := svc.SalesSeries(ctx, filter); err != nil {
		t.Fatalf("seed series: %v", err)
	}

	accepted, err := svc.IngestSaleEvent(ctx, confirmedEvent("live-1"))
	if err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if !accepted {
		t.Fatalf("expected event accepted")
	}
	if repo.journalCalls != 1 {
		t.Fatalf("expected journal insert, got %d calls", repo.journalCalls)
	}

	buckets, err := svc.SalesSeries(ctx, filter)
	if err != nil {
		t.Fatalf("series after ingest: %v", err)
	}
	var total float64
	for _, b := range buckets {
		total += b.TotalSales
	}
	if total != 120 {
		t.Fatalf("live event missing from refreshed series, total %v", total)
	}
}

func TestIngestSaleEventDuplicateDropped(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()
	svc, cleanup := newTestService(t, repo, fixedClock(now))
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.IngestSaleEvent(ctx, confirmedEvent("dup")); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	accepted, err := svc.IngestSaleEvent(ctx, confirmedEvent("dup"))
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if accepted {
		t.Fatalf("duplicate delivery must not be accepted")
	}
	if repo.journalCalls != 1 {
		t.Fatalf("duplicate should not reach the journal, calls %d", repo.journalCalls)
	}
}

func TestIngestSaleEventUnrecognizedDropped(t *testing.T) {
	repo := newMockRepo()
	svc, cleanup := newTestService(t, repo, fixedClock(time.Now()))
	defer cleanup()

	event := confirmedEvent("b2b")
	event.SupplierID = "sup-1"
	accepted, err := svc.IngestSaleEvent(context.Background(), event)
	if err != nil || accepted {
		t.Fatalf("supplier settlement must be dropped silently, accepted=%v err=%v", accepted, err)
	}
	if repo.journalCalls != 0 {
		t.Fatalf("dropped event must not be journaled")
	}
}

func TestListenLiveIngests(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	repo := newMockRepo()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	svc := NewService(repo, NewCache(client, time.Minute), fixedClock(now))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.ListenLive(ctx, client, ""); err != nil {
		t.Fatalf("listen: %v", err)
	}

	payload := `{"orderId":"live-9","method":"stripe","paymentStatus":"paid","amount":75,"timestamp":"2025-06-18T10:00:00Z"}`
	if err := client.Publish(ctx, LiveChannel, payload).Err(); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(svc.live.Snapshot()) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("published event never ingested")
}
