// Package ports declares what the order saga needs from the outside world.
package ports

import (
	"context"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

type CustomerClient interface {
	// FindCustomer fails with a business rule error when the customer does
	// not exist.
	FindCustomer(ctx context.Context, id string) (domain.Customer, error)
}

type ProductClient interface {
	PurchaseProducts(ctx context.Context, lines []productdomain.PurchaseLine) ([]productdomain.PurchaseResult, error)
}

type PaymentClient interface {
	RequestPayment(ctx context.Context, req paymentdomain.Request) (paymentdomain.Receipt, error)
}

type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, c domain.Confirmation) error
}

type OrderRepository interface {
	SaveOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	SaveLine(ctx context.Context, l domain.OrderLine) (domain.OrderLine, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByID(ctx context.Context, id int64) (domain.Order, error)
	FindLinesByOrderID(ctx context.Context, orderID int64) ([]domain.OrderLine, error)
}
