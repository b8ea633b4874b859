// Package clients wraps the remote customer, product and payment services in
// circuit breakers owned by the order service.
package clients

import (
	"context"
	"log/slog"

	customerdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

const (
	OpFindCustomer     = "customer.findCustomerById"
	OpPurchaseProducts = "product.purchaseProducts"
	OpRequestPayment   = "payment.requestPayment"
)

// CustomerFinder is satisfied by the customer rpc client.
type CustomerFinder interface {
	FindByID(ctx context.Context, id string) (customerdomain.Customer, error)
}

// ProductPurchaser is satisfied by the product rpc client.
type ProductPurchaser interface {
	PurchaseProducts(ctx context.Context, lines []productdomain.PurchaseLine) ([]productdomain.PurchaseResult, error)
}

// PaymentCreator is satisfied by the payment rpc client.
type PaymentCreator interface {
	Create(ctx context.Context, req paymentdomain.Request) (paymentdomain.Receipt, error)
}

type Customer struct {
	remote   CustomerFinder
	breakers *breaker.Registry
	log      *slog.Logger
}

func NewCustomer(remote CustomerFinder, breakers *breaker.Registry, log *slog.Logger) *Customer {
	return &Customer{remote: remote, breakers: breakers, log: log}
}

func (c *Customer) FindCustomer(ctx context.Context, id string) (domain.Customer, error) {
	found, err := breaker.Execute(ctx, c.breakers, OpFindCustomer,
		func(ctx context.Context) (customerdomain.Customer, error) {
			return c.remote.FindByID(ctx, id)
		},
		func(ctx context.Context, cause error) (customerdomain.Customer, error) {
			c.log.ErrorContext(ctx, "circuit breaker fallback: customer lookup failed",
				"operation", OpFindCustomer, "customer_id", id, "error", cause)
			return customerdomain.Customer{}, apperr.Unavailable(cause,
				"Customer service is currently unavailable. Please try again later.")
		},
	)
	if apperr.Is(err, apperr.KindNotFound) {
		return domain.Customer{}, apperr.BusinessRule("Cannot create order: no customer exists with id %s", id)
	}
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID:        found.ID,
		FirstName: found.FirstName,
		LastName:  found.LastName,
		Email:     found.Email,
	}, nil
}

type Product struct {
	remote   ProductPurchaser
	breakers *breaker.Registry
	log      *slog.Logger
}

func NewProduct(remote ProductPurchaser, breakers *breaker.Registry, log *slog.Logger) *Product {
	return &Product{remote: remote, breakers: breakers, log: log}
}

func (p *Product) PurchaseProducts(ctx context.Context, lines []productdomain.PurchaseLine) ([]productdomain.PurchaseResult, error) {
	return breaker.Execute(ctx, p.breakers, OpPurchaseProducts,
		func(ctx context.Context) ([]productdomain.PurchaseResult, error) {
			return p.remote.PurchaseProducts(ctx, lines)
		},
		func(ctx context.Context, cause error) ([]productdomain.PurchaseResult, error) {
			p.log.ErrorContext(ctx, "circuit breaker fallback: product purchase failed",
				"operation", OpPurchaseProducts, "lines", len(lines), "error", cause)
			return nil, apperr.Unavailable(cause,
				"Purchase service is temporarily unavailable. Please try again later.")
		},
	)
}

type Payment struct {
	remote   PaymentCreator
	breakers *breaker.Registry
	log      *slog.Logger
}

func NewPayment(remote PaymentCreator, breakers *breaker.Registry, log *slog.Logger) *Payment {
	return &Payment{remote: remote, breakers: breakers, log: log}
}

func (p *Payment) RequestPayment(ctx context.Context, req paymentdomain.Request) (paymentdomain.Receipt, error) {
	return breaker.Execute(ctx, p.breakers, OpRequestPayment,
		func(ctx context.Context) (paymentdomain.Receipt, error) {
			return p.remote.Create(ctx, req)
		},
		func(ctx context.Context, cause error) (paymentdomain.Receipt, error) {
			p.log.ErrorContext(ctx, "circuit breaker fallback: payment request failed",
				"operation", OpRequestPayment, "order_reference", req.OrderReference, "error", cause)
			return paymentdomain.Receipt{}, apperr.Unavailable(cause,
				"Payment service is currently unavailable. Please try again later.")
		},
	)
}
