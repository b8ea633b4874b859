// Package ports lists what the gateway needs from the backend services. The
// rpc clients of each service satisfy these interfaces.
package ports

import (
	"context"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"
	customerdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	orderdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

type CustomerService interface {
	Create(ctx context.Context, c customerdomain.Customer) (string, error)
	Update(ctx context.Context, req customerdomain.UpdateRequest) error
	FindAll(ctx context.Context) ([]customerdomain.Customer, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (customerdomain.Customer, error)
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	Create(ctx context.Context, p productdomain.Product) (int64, error)
	PurchaseProducts(ctx context.Context, lines []productdomain.PurchaseLine) ([]productdomain.PurchaseResult, error)
	FindByID(ctx context.Context, id int64) (productdomain.Product, error)
	FindAll(ctx context.Context) ([]productdomain.Product, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req orderdomain.Request) (orderdomain.CreateResult, error)
	FindAll(ctx context.Context) ([]orderdomain.Order, error)
	FindByID(ctx context.Context, id int64) (orderdomain.Order, error)
	FindLines(ctx context.Context, orderID int64) ([]orderdomain.OrderLine, error)
	FindStuckSagas(ctx context.Context) ([]sagalog.SagaLog, error)
}

type PaymentService interface {
	Create(ctx context.Context, req paymentdomain.Request) (paymentdomain.Receipt, error)
}

// BreakerAdmin is the admin surface every service exposes for its breakers.
type BreakerAdmin interface {
	List(ctx context.Context) ([]breaker.CircuitBreakerState, error)
	Reset(ctx context.Context, name string) error
}
