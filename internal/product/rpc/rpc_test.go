package rpc

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/rpcjson/rpcjsontest"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/app"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/repository"
)

func TestProductRoundTrip(t *testing.T) {
	repo := repository.NewMemory(domain.Category{ID: 1, Name: "Keyboards"})
	svc := app.NewService(repo, breaker.NewRegistry(breaker.DefaultConfig()), slog.Default())
	conn := rpcjsontest.Dial(t, func(s *grpc.Server) { Register(s, svc) })
	client := NewClient(conn)
	ctx := context.Background()

	id, err := client.Create(ctx, domain.Product{
		Name: "K1", Description: "mechanical", AvailableQuantity: 5,
		Price: decimal.RequireFromString("49.90"), CategoryID: 1,
	})
	require.NoError(t, err)

	res, err := client.PurchaseProducts(ctx, []domain.PurchaseLine{{ProductID: id, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Price.Equal(decimal.RequireFromString("49.90")))

	p, err := client.FindByID(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, p.AvailableQuantity, 0.0001)

	_, err = client.PurchaseProducts(ctx, []domain.PurchaseLine{{ProductID: id, Quantity: 10}})
	assert.True(t, apperr.Is(err, apperr.KindBusinessRule))

	_, err = client.FindByID(ctx, 404)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	all, err := client.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
