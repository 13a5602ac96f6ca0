package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LiveChannel is the Redis channel carrying sale-confirmed push events.
const LiveChannel = "sales.confirmed"

// SalesFilter scopes a sales series request.
type SalesFilter struct {
	Granularity Granularity
	Channel     Channel
	Window      int
}

// ProfitFilter scopes a profit report request.
type ProfitFilter struct {
	Channel Channel
}

// Service coordinates snapshot loading, live ingestion and cache-aware
// aggregation.
type Service struct {
	repo  Repository
	cache *Cache
	live  *OrderSet
	clock Clock
}

// NewService wires a Repository with the cache helper. A nil clock defaults
// to time.Now.
func NewService(repo Repository, cache *Cache, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, cache: cache, live: NewOrderSet(), clock: clock}
}

// SalesSeries returns the bucketed sales series for the filter. The series
// always spans exactly filter.Window buckets ending at the current one.
func (s *Service) SalesSeries(ctx context.Context, filter SalesFilter) ([]AggregateBucket, error) {
	filter = normalizeSalesFilter(filter)

	loader := func(ctx context.Context) (interface{}, error) {
		orders, err := s.workingSet(ctx)
		if err != nil {
			return nil, err
		}
		var windowKeys []string
		if filter.Granularity == GranularityMonthly {
			windowKeys = LastNMonthKeys(filter.Window, s.clock)
		} else {
			windowKeys = LastNWeekKeys(filter.Window, s.clock)
		}
		return AggregateSales(orders, filter.Granularity, filter.Channel, windowKeys), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]AggregateBucket), nil
	}

	keyBase := keySales(filter.Granularity, filter.Channel, filter.Window) + ":" + s.dayToken()
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return nil, err
	}
	var buckets []AggregateBucket
	if err := s.cache.FetchJSON(ctx, key, &buckets, loader); err != nil {
		return nil, err
	}
	return buckets, nil
}

// ProfitReport computes rolling profit totals for the filter, resolving
// per-line cost through a freshly built index over the current product and
// supplier-product snapshots.
func (s *Service) ProfitReport(ctx context.Context, filter ProfitFilter) (ProfitReport, error) {
	if filter.Channel == "" {
		filter.Channel = ChannelAll
	}

	loader := func(ctx context.Context) (interface{}, error) {
		orders, err := s.workingSet(ctx)
		if err != nil {
			return nil, err
		}
		products, err := s.repo.Products(ctx)
		if err != nil {
			return nil, err
		}
		catalog, err := s.repo.SupplierProducts(ctx)
		if err != nil {
			return nil, err
		}
		idx := BuildCostIndex(products, catalog)
		return ComputeProfit(orders, filter.Channel, idx, s.clock()), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return ProfitReport{}, err
		}
		return value.(ProfitReport), nil
	}

	keyBase := keyProfit(filter.Channel) + ":" + s.dayToken()
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return ProfitReport{}, err
	}
	var report ProfitReport
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return ProfitReport{}, err
	}
	return report, nil
}

// IngestSaleEvent folds one push event into the working set. It returns
// whether the event was accepted: unrecognized payloads and duplicate
// deliveries are dropped without error, per the at-least-once contract.
func (s *Service) IngestSaleEvent(ctx context.Context, event SaleEvent) (bool, error) {
	order := event.Order()
	if !IsRecognizedSale(order) {
		return false, nil
	}
	if !s.live.Ingest(order) {
		return false, nil
	}
	if s.repo != nil {
		if payload, err := json.Marshal(order.Document()); err == nil {
			if err := s.repo.RecordSaleEvent(ctx, order.ID, payload); err != nil && !errors.Is(err, ErrDuplicateEvent) {
				return true, err
			}
		}
	}
	return true, s.cache.Bump(ctx)
}

// ListenLive subscribes to the sale-confirmed channel and ingests every
// decodable payload. Undecodable messages are dropped; the classifier
// handles the rest of the filtering.
func (s *Service) ListenLive(ctx context.Context, client *redis.Client, channel string) error {
	if client == nil {
		return errors.New("reporting: redis client required for live feed")
	}
	if channel == "" {
		channel = LiveChannel
	}
	pubsub := client.Subscribe(ctx, channel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event SaleEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				_, _ = s.IngestSaleEvent(ctx, event)
			}
		}
	}()
	return nil
}

// workingSet returns the orders the aggregations run over: the pulled
// snapshot merged with accepted live events. The first call pulls the
// snapshot and replays any events that beat it.
func (s *Service) workingSet(ctx context.Context) ([]Order, error) {
	if !s.live.Ready() {
		orders, err := s.repo.Orders(ctx)
		if err != nil {
			return nil, err
		}
		s.live.SetSnapshot(orders)
	}
	return s.live.Snapshot(), nil
}

// Refresh re-pulls the snapshot, discarding the merged working set.
func (s *Service) Refresh(ctx context.Context) error {
	orders, err := s.repo.Orders(ctx)
	if err != nil {
		return err
	}
	s.live.SetSnapshot(orders)
	return s.cache.Bump(ctx)
}

func (s *Service) dayToken() string {
	return s.clock().Format("2006-01-02")
}

func normalizeSalesFilter(f SalesFilter) SalesFilter {
	if f.Granularity != GranularityMonthly {
		f.Granularity = GranularityWeekly
	}
	if f.Channel == "" {
		f.Channel = ChannelAll
	}
	if f.Window <= 0 {
		if f.Granularity == GranularityMonthly {
			f.Window = 6
		} else {
			f.Window = 7
		}
	}
	return f
}
