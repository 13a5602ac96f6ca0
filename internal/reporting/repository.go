package reporting

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toko-ops/toko-ops/internal/platform/db"
)

// ErrDuplicateEvent marks a live event whose order id was already journaled.
var ErrDuplicateEvent = errors.New("sale event already recorded")

// Repository provides the reporting data snapshots. Order documents arrive
// from the commerce upstream as JSONB payloads mirroring its API shapes;
// normalization happens here, at the boundary, so the engine only ever sees
// canonical orders.
type Repository interface {
	Orders(ctx context.Context) ([]Order, error)
	Products(ctx context.Context) ([]Product, error)
	SupplierProducts(ctx context.Context) ([]SupplierProduct, error)
	RecordSaleEvent(ctx context.Context, orderID string, payload []byte) error
}

// PGRepository is the PostgreSQL backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Orders loads the order documents newest first. Documents that fail to
// decode are skipped; a reporting snapshot never aborts on one bad row.
func (r *PGRepository) Orders(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT payload FROM order_documents ORDER BY received_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var raw map[string]any
		if err := json.Unmarshal(payload, &raw); err != nil {
			continue
		}
		orders = append(orders, NormalizeOrder(raw))
	}
	return orders, rows.Err()
}

// Products loads the retail product snapshot with supplier linkage.
func (r *PGRepository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(supplier_product_id, ''), supplier_product
		FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var (
			p        Product
			embedded []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.SupplierProductID, &embedded); err != nil {
			return nil, err
		}
		if len(embedded) > 0 {
			var raw map[string]any
			if err := json.Unmarshal(embedded, &raw); err == nil {
				sp := SupplierProduct{
					ID:   stringAt(raw, "_id", "id"),
					Name: stringAt(raw, "name"),
				}
				sp.Price, sp.HasPrice = numberAt(raw, "price")
				p.SupplierProduct = &sp
			}
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SupplierProducts loads the supplier catalog snapshot.
func (r *PGRepository) SupplierProducts(ctx context.Context) ([]SupplierProduct, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price FROM supplier_products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var catalog []SupplierProduct
	for rows.Next() {
		var (
			sp    SupplierProduct
			price *float64
		)
		if err := rows.Scan(&sp.ID, &sp.Name, &price); err != nil {
			return nil, err
		}
		if price != nil {
			sp.Price, sp.HasPrice = *price, true
		}
		catalog = append(catalog, sp)
	}
	return catalog, rows.Err()
}

// RecordSaleEvent journals a live event and folds it into the order document
// snapshot in one transaction, so an accepted event survives a restart. The
// unique constraint on order_id turns at-least-once delivery into
// exactly-once storage.
func (r *PGRepository) RecordSaleEvent(ctx context.Context, orderID string, payload []byte) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sale_event_journal (order_id, payload, received_at)
			VALUES ($1, $2, now())`, orderID, payload); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO order_documents (order_id, payload, received_at)
			VALUES ($1, $2, now())
			ON CONFLICT (order_id) DO NOTHING`, orderID, payload)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEvent
		}
		return err
	}
	return nil
}
