package app

import (
	"context"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

type Repository interface {
	// Create assigns the id and resolves the category name.
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id int64) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	// FindAllByIDs returns the stored products among ids in ascending id
	// order. Unknown ids are skipped.
	FindAllByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	// DecrementStock atomically subtracts quantity from one product and
	// returns the updated row, or domain.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id int64, quantity float64) (domain.Product, error)
}
