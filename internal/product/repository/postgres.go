package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

const Schema = `
CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
    id                 BIGSERIAL PRIMARY KEY,
    name               TEXT             NOT NULL,
    description        TEXT             NOT NULL,
    available_quantity DOUBLE PRECISION NOT NULL CHECK (available_quantity >= 0),
    price              NUMERIC(38, 2)   NOT NULL,
    category_id        BIGINT           NOT NULL REFERENCES categories(id) ON DELETE CASCADE
);
`

const selectProduct = `
SELECT p.id, p.name, p.description, p.available_quantity, p.price, p.category_id, c.name
FROM products p JOIN categories c ON c.id = p.category_id`

type Postgres struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewPostgres(log *slog.Logger, pool *pgxpool.Pool) *Postgres {
	return &Postgres{log: log, pool: pool}
}

func (r *Postgres) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// SeedCategories inserts each named category that does not exist yet.
func (r *Postgres) SeedCategories(ctx context.Context, names ...string) error {
	for _, name := range names {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO categories (name)
			SELECT $1::text WHERE NOT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, name)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	return nil
}

func (r *Postgres) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO products (name, description, available_quantity, price, category_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Name, p.Description, p.AvailableQuantity, p.Price, p.CategoryID).Scan(&p.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.Product{}, apperr.NotFound("Category with id %d not found", p.CategoryID)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	if err := tx.QueryRow(ctx, `SELECT name FROM categories WHERE id = $1`, p.CategoryID).Scan(&p.CategoryName); err != nil {
		return domain.Product{}, fmt.Errorf("load category: %w", err)
	}
	return p, tx.Commit(ctx)
}

func (r *Postgres) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, apperr.NotFound("Product not found with id: %d", id)
	}
	return p, err
}

func (r *Postgres) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, selectProduct+` ORDER BY p.id`)
}

func (r *Postgres) FindAllByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return r.query(ctx, selectProduct+` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
}

// DecrementStock relies on a single conditional UPDATE so the check and the
// write happen under the row lock.
func (r *Postgres) DecrementStock(ctx context.Context, id int64, quantity float64) (domain.Product, error) {
	const q = `
		WITH updated AS (
			UPDATE products SET available_quantity = available_quantity - $2
			WHERE id = $1 AND available_quantity >= $2
			RETURNING *
		)
		SELECT p.id, p.name, p.description, p.available_quantity, p.price, p.category_id, c.name
		FROM updated p JOIN categories c ON c.id = p.category_id`

	p, err := scanProduct(r.pool.QueryRow(ctx, q, id, quantity))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return domain.Product{}, err
		}
		if !exists {
			return domain.Product{}, apperr.NotFound("Product not found with id: %d", id)
		}
		return domain.Product{}, domain.ErrInsufficientStock
	}
	return p, err
}

func (r *Postgres) query(ctx context.Context, sql string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.AvailableQuantity, &p.Price, &p.CategoryID, &p.CategoryName)
	return p, err
}
