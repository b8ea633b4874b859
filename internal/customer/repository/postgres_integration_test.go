//go:build integration

package repository

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres/pgtest"
)

func TestPostgresCustomerRepository(t *testing.T) {
	repo := NewPostgres(slog.Default(), pgtest.Start(t, Schema))
	ctx := context.Background()

	c := domain.Customer{ID: "C1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByID(ctx, "C1")
	require.NoError(t, err)
	assert.Nil(t, got.Address)

	got.Address = &domain.Address{Street: "Main", HouseNumber: "1", ZipCode: "12345"}
	require.NoError(t, repo.Save(ctx, got))

	got, err = repo.FindByID(ctx, "C1")
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, "12345", got.Address.ZipCode)

	exists, err := repo.Exists(ctx, "C1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, "C1"))
	_, err = repo.FindByID(ctx, "C1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
