package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-pos/atelier/internal/catalog"
)

// Repository supplies the raw ledger rows the engine aggregates. Every
// figure is computed on demand from these, never cached.
type Repository interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Variants(ctx context.Context) ([]catalog.Variant, error)
	CompletedSaleItems(ctx context.Context, from, to time.Time) ([]SaleItemRow, error)
	Transactions(ctx context.Context, from, to time.Time) ([]TransactionRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Products(ctx context.Context) ([]catalog.Product, error) {
	const query = `
		SELECT id, name, reference, category, price, price_wholesale, status, trend, season, description, image, created_at
		FROM products ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Reference, &p.Category, &p.Price, &p.PriceWholesale,
			&p.Status, &p.Trend, &p.Season, &p.Description, &p.Image, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Variants(ctx context.Context) ([]catalog.Variant, error) {
	const query = `SELECT id, product_id, color, size, channel, stock FROM product_variants`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Variant
	for rows.Next() {
		var v catalog.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Channel, &v.Stock); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CompletedSaleItems returns sale items whose transaction is completed (a
// NULL status counts as completed). Zero from/to leave the range unbounded.
func (r *repository) CompletedSaleItems(ctx context.Context, from, to time.Time) ([]SaleItemRow, error) {
	const query = `
		SELECT t.id, i.product_id, COALESCE(i.color, ''), COALESCE(i.size, ''), COALESCE(i.channel, ''),
		       i.quantity, i.unit_price, t.created_at
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.type = 'sale'
		  AND (t.status IS NULL OR t.status = 'completed')
		  AND ($1::timestamptz IS NULL OR t.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR t.created_at <= $2)
		ORDER BY t.created_at`
	rows, err := r.pool.Query(ctx, query, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaleItemRow
	for rows.Next() {
		var row SaleItemRow
		err := rows.Scan(&row.TransactionID, &row.ProductID, &row.Color, &row.Size, &row.Channel,
			&row.Quantity, &row.UnitPrice, &row.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) Transactions(ctx context.Context, from, to time.Time) ([]TransactionRow, error) {
	const query = `
		SELECT id, type, COALESCE(status, ''), total, created_at
		FROM transactions
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRow
	for rows.Next() {
		var row TransactionRow
		if err := rows.Scan(&row.ID, &row.Type, &row.Status, &row.Total, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
