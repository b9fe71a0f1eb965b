package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-pos/atelier/internal/catalog"
	"github.com/atelier-pos/atelier/internal/platform/db"
)

// Repository persists transactions and exposes atomic units to the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id string) (*Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]Transaction, error)
}

// TxRepository exposes the writes permitted inside one atomic unit. The
// service is the only caller allowed to combine item writes with ledger
// stock adjustments.
type TxRepository interface {
	Get(ctx context.Context, id string) (*Transaction, error)
	InsertTransaction(ctx context.Context, t Transaction) error
	InsertItem(ctx context.Context, item Item) (int64, error)
	UpdateHeader(ctx context.Context, id string, patch HeaderPatch) error
	SetStatus(ctx context.Context, id string, status Status) error
	UpdateItem(ctx context.Context, itemID int64, quantity int, unitPrice float64) error
	DeleteItem(ctx context.Context, itemID int64) error
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, productID int64, color, size string, channel catalog.Channel, delta int) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn inside one RepeatableRead transaction; all writes commit
// together or roll back together.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const headerColumns = `id, type, COALESCE(status, ''), total, COALESCE(payment_method, ''),
	COALESCE(description, ''), COALESCE(created_by, ''), COALESCE(location, ''), created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Type, &t.Status, &t.Total, &t.PaymentMethod,
		&t.Description, &t.CreatedBy, &t.Location, &t.CreatedAt)
	return t, err
}

func (r *repository) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+headerColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.itemsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	t.Items = items[id]
	return &t, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+headerColumns+` FROM transactions ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	var ids []string
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *repository) itemsFor(ctx context.Context, ids []string) (map[string][]Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
		SELECT id, transaction_id, product_id, COALESCE(color, ''), COALESCE(size, ''),
		       COALESCE(channel, ''), quantity, unit_price
		FROM transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY id`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTx := make(map[string][]Item)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.TransactionID, &item.ProductID, &item.Color,
			&item.Size, &item.Channel, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, err
		}
		byTx[item.TransactionID] = append(byTx[item.TransactionID], item)
	}
	return byTx, rows.Err()
}

func (r *repository) InsertTransaction(ctx context.Context, t Transaction) error {
	const query = `
		INSERT INTO transactions (id, type, status, total, payment_method, description, created_by, location, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)`
	_, err := r.db.Exec(ctx, query, t.ID, t.Type, string(t.Status), t.Total,
		t.PaymentMethod, t.Description, t.CreatedBy, t.Location, t.CreatedAt)
	return err
}

func (r *repository) InsertItem(ctx context.Context, item Item) (int64, error) {
	const query = `
		INSERT INTO transaction_items (transaction_id, product_id, color, size, channel, quantity, unit_price)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query, item.TransactionID, item.ProductID, item.Color,
		item.Size, string(item.Channel), item.Quantity, item.UnitPrice).Scan(&id)
	return id, err
}

func (r *repository) UpdateHeader(ctx context.Context, id string, patch HeaderPatch) error {
	const query = `
		UPDATE transactions
		SET description = COALESCE($2, description),
		    payment_method = COALESCE($3, payment_method),
		    total = COALESCE($4, total)
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, patch.Description, patch.PaymentMethod, patch.Total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE transactions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateItem(ctx context.Context, itemID int64, quantity int, unitPrice float64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE transaction_items SET quantity = $2, unit_price = $3 WHERE id = $1`,
		itemID, quantity, unitPrice)
	return err
}

func (r *repository) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transaction_items WHERE id = $1`, itemID)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	// Item rows cascade via FK.
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock adds delta to the matching variant's stock, clamped at zero;
// silently a no-op when no matching variant row exists.
func (r *repository) AdjustStock(ctx context.Context, productID int64, color, size string, channel catalog.Channel, delta int) error {
	const query = `
		UPDATE product_variants
		SET stock = GREATEST(stock + $5, 0)
		WHERE product_id = $1 AND color = $2 AND size = $3 AND channel = $4`
	_, err := r.db.Exec(ctx, query, productID, color, size, channel, delta)
	return err
}
