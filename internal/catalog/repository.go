package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-pos/atelier/internal/platform/db"
)

// Repository persists products and their variants in PostgreSQL.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p Product, variants []VariantInput) (int64, error)
	Update(ctx context.Context, id int64, patch ProductPatch) error
	Delete(ctx context.Context, id int64) error
	ReplaceVariants(ctx context.Context, productID int64, variants []VariantInput) error
	ListVariants(ctx context.Context, productID int64) ([]Variant, error)
	AggregateStock(ctx context.Context, productID int64, channel Channel) (int, error)
	AdjustStock(ctx context.Context, productID int64, color, size string, channel Channel, delta int) error
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

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const productColumns = `id, name, reference, category, price, price_wholesale, status, trend, season, description, image, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Reference, &p.Category, &p.Price, &p.PriceWholesale,
		&p.Status, &p.Trend, &p.Season, &p.Description, &p.Image, &p.CreatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM products ORDER BY name`, productColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns), id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	variants, err := r.ListVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

// Create inserts the product and its initial variant set inside one
// transaction, so a variant failure leaves no product row behind.
func (r *repository) Create(ctx context.Context, p Product, variants []VariantInput) (int64, error) {
	const query = `
		INSERT INTO products (name, reference, category, price, price_wholesale, status, trend, season, description, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, p.Name, p.Reference, p.Category, p.Price, p.PriceWholesale,
			p.Status, p.Trend, p.Season, p.Description, p.Image).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReference
			}
			return err
		}
		return insertVariants(ctx, tx, id, variants)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, patch ProductPatch) error {
	query := "UPDATE products SET id = id"
	var args []interface{}
	argPos := 1

	set := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argPos)
		args = append(args, value)
		argPos++
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.PriceWholesale != nil {
		set("price_wholesale", *patch.PriceWholesale)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Trend != nil {
		set("trend", *patch.Trend)
	}
	if patch.Season != nil {
		set("season", *patch.Season)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	// Variants cascade via FK.
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceVariants deletes the product's variants and reinserts the supplied
// set inside one transaction. Entries missing color, size or channel are
// skipped.
func (r *repository) ReplaceVariants(ctx context.Context, productID int64, variants []VariantInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, productID); err != nil {
			return err
		}
		return insertVariants(ctx, tx, productID, variants)
	})
}

// insertVariants writes the variant rows for a product within the caller's
// transaction. Entries missing color, size or channel are skipped and
// negative stock is clamped to zero.
func insertVariants(ctx context.Context, tx pgx.Tx, productID int64, variants []VariantInput) error {
	for _, v := range variants {
		if v.Color == "" || v.Size == "" || v.Channel == "" {
			continue
		}
		stock := v.Stock
		if stock < 0 {
			stock = 0
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO product_variants (product_id, color, size, channel, stock) VALUES ($1, $2, $3, $4, $5)`,
			productID, v.Color, v.Size, v.Channel, stock)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListVariants(ctx context.Context, productID int64) ([]Variant, error) {
	const query = `
		SELECT id, product_id, color, size, channel, stock
		FROM product_variants
		WHERE product_id = $1
		ORDER BY channel, color, size`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Channel, &v.Stock); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) AggregateStock(ctx context.Context, productID int64, channel Channel) (int, error) {
	query := `SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = $1`
	args := []interface{}{productID}
	if channel != "" {
		query += ` AND channel = $2`
		args = append(args, channel)
	}
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// AdjustStock adds delta to the matching variant's stock, clamped at zero.
// Silently a no-op when no matching variant row exists.
func (r *repository) AdjustStock(ctx context.Context, productID int64, color, size string, channel Channel, delta int) error {
	const query = `
		UPDATE product_variants
		SET stock = GREATEST(stock + $5, 0)
		WHERE product_id = $1 AND color = $2 AND size = $3 AND channel = $4`
	_, err := r.db.Exec(ctx, query, productID, color, size, channel, delta)
	return err
}
