package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

const Schema = `
CREATE TABLE IF NOT EXISTS payments (
    id              BIGSERIAL PRIMARY KEY,
    amount          NUMERIC(38, 2) NOT NULL,
    payment_method  TEXT NOT NULL,
    order_id        BIGINT NOT NULL,
    order_reference TEXT NOT NULL,
    created_date    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_payments_order_reference ON payments(order_reference);
`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Save(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payments (amount, payment_method, order_id, order_reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_date`,
		p.Amount, string(p.PaymentMethod), p.OrderID, p.OrderReference,
	).Scan(&p.ID, &p.CreatedDate)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("insert payment for %s: %w", p.OrderReference, err)
	}
	return p, nil
}

func (r *Postgres) FindByID(ctx context.Context, id int64) (domain.Payment, error) {
	var p domain.Payment
	err := r.pool.QueryRow(ctx, `
		SELECT id, amount, payment_method, order_id, order_reference, created_date
		FROM payments WHERE id = $1`, id,
	).Scan(&p.ID, &p.Amount, &p.PaymentMethod, &p.OrderID, &p.OrderReference, &p.CreatedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, apperr.NotFound("Payment with id %d not found", id)
	}
	return p, err
}
