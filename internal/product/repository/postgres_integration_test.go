//go:build integration

package repository

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres/pgtest"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

func TestPostgresProductRepository(t *testing.T) {
	pool := pgtest.Start(t, Schema)
	repo := NewPostgres(slog.Default(), pool)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "Keyboards"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.Product{Name: "x", Description: "x", Price: decimal.NewFromInt(1), CategoryID: 999})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var ids []int64
	for _, name := range []string{"K1", "K2"} {
		p, err := repo.Create(ctx, domain.Product{
			Name:              name,
			Description:       "mechanical",
			AvailableQuantity: 5,
			Price:             decimal.RequireFromString("49.90"),
			CategoryID:        cat.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Keyboards", p.CategoryName)
		ids = append(ids, p.ID)
	}

	found, err := repo.FindAllByIDs(ctx, []int64{ids[1], ids[0], 12345})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, ids[0], found[0].ID)
	assert.True(t, found[0].Price.Equal(decimal.RequireFromString("49.90")))

	updated, err := repo.DecrementStock(ctx, ids[0], 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, updated.AvailableQuantity, 0.0001)

	_, err = repo.DecrementStock(ctx, ids[0], 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = repo.FindByID(ctx, 12345)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPostgresDecrementIsAtomicPerRow(t *testing.T) {
	pool := pgtest.Start(t, Schema)
	repo := NewPostgres(slog.Default(), pool)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "Mice"})
	require.NoError(t, err)
	p, err := repo.Create(ctx, domain.Product{
		Name: "M1", Description: "wireless", AvailableQuantity: 10,
		Price: decimal.NewFromInt(20), CategoryID: cat.ID,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DecrementStock(ctx, p.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	left, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, left.AvailableQuantity)
}

func TestPostgresSeedCategoriesIsIdempotent(t *testing.T) {
	pool := pgtest.Start(t, Schema)
	repo := NewPostgres(slog.Default(), pool)
	ctx := context.Background()

	require.NoError(t, repo.SeedCategories(ctx, "Keyboards", "Mice"))
	require.NoError(t, repo.SeedCategories(ctx, "Keyboards"))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&n))
	assert.Equal(t, 2, n)
}
