package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

const Schema = `
CREATE TABLE IF NOT EXISTS customer_order (
    id                 BIGSERIAL PRIMARY KEY,
    reference          TEXT           NOT NULL UNIQUE,
    total_amount       NUMERIC(38, 2) NOT NULL,
    payment_method     TEXT           NOT NULL,
    customer_id        TEXT           NOT NULL,
    created_date       TIMESTAMPTZ    NOT NULL DEFAULT now(),
    last_modified_date TIMESTAMPTZ    NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customer_line (
    id         BIGSERIAL PRIMARY KEY,
    order_id   BIGINT           NOT NULL REFERENCES customer_order(id),
    product_id BIGINT           NOT NULL,
    quantity   DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customer_line_order_id ON customer_line(order_id);
`

const selectOrder = `
SELECT id, reference, total_amount, payment_method, customer_id, created_date, last_modified_date
FROM customer_order`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) SaveOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customer_order (reference, total_amount, payment_method, customer_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_date, last_modified_date`,
		o.Reference, o.TotalAmount, string(o.PaymentMethod), o.CustomerID,
	).Scan(&o.ID, &o.CreatedDate, &o.LastModifiedDate)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.Order{}, apperr.BusinessRule("Order with reference %s already exists", o.Reference)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *Postgres) SaveLine(ctx context.Context, l domain.OrderLine) (domain.OrderLine, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customer_line (order_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`,
		l.OrderID, l.ProductID, l.Quantity,
	).Scan(&l.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.OrderLine{}, apperr.NotFound("Order with id %d not found", l.OrderID)
	}
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("insert order line: %w", err)
	}
	return l, nil
}

func (r *Postgres) FindAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *Postgres) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` WHERE id = $1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, apperr.NotFound("No order found with the provided ID: %d", id)
	}
	return o, err
}

func (r *Postgres) FindLinesByOrderID(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, quantity FROM customer_line WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.OrderLine])
}

func scanOrder(row pgx.CollectableRow) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.Reference, &o.TotalAmount, &o.PaymentMethod, &o.CustomerID,
		&o.CreatedDate, &o.LastModifiedDate)
	return o, err
}
