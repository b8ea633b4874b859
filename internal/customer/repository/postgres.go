package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

const Schema = `
CREATE TABLE IF NOT EXISTS customers (
    id           TEXT PRIMARY KEY,
    firstname    TEXT NOT NULL,
    lastname     TEXT NOT NULL,
    email        TEXT NOT NULL,
    street       TEXT,
    house_number TEXT,
    zip_code     TEXT
);
`

type Postgres struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewPostgres(log *slog.Logger, pool *pgxpool.Pool) *Postgres {
	return &Postgres{log: log, pool: pool}
}

func (r *Postgres) Save(ctx context.Context, c domain.Customer) error {
	var street, house, zip *string
	if c.Address != nil {
		street, house, zip = &c.Address.Street, &c.Address.HouseNumber, &c.Address.ZipCode
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, firstname, lastname, email, street, house_number, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET firstname = $2, lastname = $3, email = $4,
			street = $5, house_number = $6, zip_code = $7`,
		c.ID, c.FirstName, c.LastName, c.Email, street, house, zip)
	return err
}

func (r *Postgres) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `
		SELECT id, firstname, lastname, email, street, house_number, zip_code
		FROM customers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, apperr.NotFound("Customer with id %s not found", id)
	}
	return c, err
}

func (r *Postgres) FindAll(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, firstname, lastname, email, street, house_number, zip_code
		FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *Postgres) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var c domain.Customer
	var street, house, zip *string
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &street, &house, &zip); err != nil {
		return domain.Customer{}, err
	}
	if street != nil || house != nil || zip != nil {
		c.Address = &domain.Address{Street: deref(street), HouseNumber: deref(house), ZipCode: deref(zip)}
	}
	return c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
