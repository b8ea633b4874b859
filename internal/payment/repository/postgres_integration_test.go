//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres/pgtest"
)

func TestPostgresPaymentRepository(t *testing.T) {
	repo := NewPostgres(pgtest.Start(t, Schema))
	ctx := context.Background()

	saved, err := repo.Save(ctx, domain.Payment{
		Amount:         decimal.RequireFromString("40.00"),
		PaymentMethod:  domain.MethodVisa,
		OrderID:        7,
		OrderReference: "ORD-7",
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.CreatedDate.IsZero())

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("40")))
	assert.Equal(t, domain.MethodVisa, got.PaymentMethod)

	_, err = repo.FindByID(ctx, saved.ID+1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
