//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/postgres/pgtest"
)

func TestPostgresOrderRepository(t *testing.T) {
	repo := NewPostgres(pgtest.Start(t, Schema))
	ctx := context.Background()

	o, err := repo.SaveOrder(ctx, domain.Order{
		Reference:     "ORD-1",
		TotalAmount:   decimal.RequireFromString("40.00"),
		PaymentMethod: paymentdomain.MethodPaypal,
		CustomerID:    "C1",
	})
	require.NoError(t, err)
	assert.NotZero(t, o.ID)

	_, err = repo.SaveOrder(ctx, domain.Order{Reference: "ORD-1", TotalAmount: decimal.NewFromInt(1), PaymentMethod: paymentdomain.MethodVisa, CustomerID: "C1"})
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))

	_, err = repo.SaveLine(ctx, domain.OrderLine{OrderID: o.ID, ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = repo.SaveLine(ctx, domain.OrderLine{OrderID: o.ID + 100, ProductID: 1, Quantity: 2})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	lines, err := repo.FindLinesByOrderID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2.0, lines[0].Quantity)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", got.Reference)

	_, err = repo.FindByID(ctx, o.ID+100)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
