package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/ports"
	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

const (
	StepResolveCustomer     = "resolve_customer"
	StepReserveProducts     = "reserve_products"
	StepPersistOrder        = "persist_order"
	StepPersistOrderLines   = "persist_order_lines"
	StepRequestPayment      = "request_payment"
	StepPublishConfirmation = "publish_confirmation"
)

// OrderPersistedSteps are the furthest steps of a saga that left an order
// without a payment when it stopped.
var OrderPersistedSteps = []string{StepPersistOrder, StepPersistOrderLines}

// PublishPolicy decides what a failed confirmation publish does to the saga.
type PublishPolicy string

const (
	// PublishFail fails the saga. The order and payment stay persisted.
	PublishFail PublishPolicy = "fail"
	// PublishDegrade logs the failure and completes the saga degraded.
	PublishDegrade PublishPolicy = "degrade"
)

func ParsePublishPolicy(s string) (PublishPolicy, error) {
	switch p := PublishPolicy(s); p {
	case PublishFail, PublishDegrade:
		return p, nil
	case "":
		return PublishFail, nil
	default:
		return "", fmt.Errorf("coordinator: unknown publish failure policy %q", s)
	}
}

// OrderSaga carries what each step produced to the steps after it.
type OrderSaga struct {
	Request   domain.Request
	Customer  domain.Customer
	Purchased []productdomain.PurchaseResult
	Order     domain.Order
	Lines     []domain.OrderLine
	Receipt   paymentdomain.Receipt
}

func (s *OrderSaga) OrderID() int64 { return s.Order.ID }

type Dependencies struct {
	Customers     ports.CustomerClient
	Products      ports.ProductClient
	Orders        ports.OrderRepository
	Payments      ports.PaymentClient
	Publisher     ports.ConfirmationPublisher
	PublishPolicy PublishPolicy
	Logger        *slog.Logger
}

// OrderSteps returns the six order creation steps bound to saga.
func OrderSteps(saga *OrderSaga, d Dependencies) []Step {
	return []Step{
		&ResolveCustomerStep{client: d.Customers, saga: saga},
		&ReserveProductsStep{client: d.Products, saga: saga},
		&PersistOrderStep{repo: d.Orders, saga: saga},
		&PersistOrderLinesStep{repo: d.Orders, saga: saga},
		&RequestPaymentStep{client: d.Payments, saga: saga},
		&PublishConfirmationStep{publisher: d.Publisher, policy: d.PublishPolicy, logger: d.Logger, saga: saga},
	}
}

// --- ResolveCustomerStep ---

type ResolveCustomerStep struct {
	client ports.CustomerClient
	saga   *OrderSaga
}

func (s *ResolveCustomerStep) Name() string { return StepResolveCustomer }

func (s *ResolveCustomerStep) Execute(ctx context.Context) error {
	c, err := s.client.FindCustomer(ctx, s.saga.Request.CustomerID)
	if err != nil {
		return err
	}
	s.saga.Customer = c
	return nil
}

// --- ReserveProductsStep ---

type ReserveProductsStep struct {
	client ports.ProductClient
	saga   *OrderSaga
}

func (s *ReserveProductsStep) Name() string { return StepReserveProducts }

func (s *ReserveProductsStep) Execute(ctx context.Context) error {
	purchased, err := s.client.PurchaseProducts(ctx, s.saga.Request.Products)
	if err != nil {
		return err
	}
	s.saga.Purchased = purchased
	return nil
}

// --- PersistOrderStep ---

type PersistOrderStep struct {
	repo ports.OrderRepository
	saga *OrderSaga
}

func (s *PersistOrderStep) Name() string { return StepPersistOrder }

func (s *PersistOrderStep) Execute(ctx context.Context) error {
	o, err := s.repo.SaveOrder(ctx, domain.NewOrder(s.saga.Request))
	if err != nil {
		return fmt.Errorf("save order %s: %w", s.saga.Request.Reference, err)
	}
	s.saga.Order = o
	return nil
}

// --- PersistOrderLinesStep ---

type PersistOrderLinesStep struct {
	repo ports.OrderRepository
	saga *OrderSaga
}

func (s *PersistOrderLinesStep) Name() string { return StepPersistOrderLines }

func (s *PersistOrderLinesStep) Execute(ctx context.Context) error {
	for _, l := range s.saga.Request.Products {
		line, err := s.repo.SaveLine(ctx, domain.OrderLine{
			OrderID:   s.saga.Order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
		if err != nil {
			return fmt.Errorf("save line for product %d: %w", l.ProductID, err)
		}
		s.saga.Lines = append(s.saga.Lines, line)
	}
	return nil
}

// --- RequestPaymentStep ---

type RequestPaymentStep struct {
	client ports.PaymentClient
	saga   *OrderSaga
}

func (s *RequestPaymentStep) Name() string { return StepRequestPayment }

func (s *RequestPaymentStep) Execute(ctx context.Context) error {
	c := s.saga.Customer
	receipt, err := s.client.RequestPayment(ctx, paymentdomain.Request{
		Amount:         s.saga.Request.Amount,
		PaymentMethod:  s.saga.Request.PaymentMethod,
		OrderID:        s.saga.Order.ID,
		OrderReference: s.saga.Order.Reference,
		Customer: paymentdomain.Customer{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
		},
	})
	if err != nil {
		return err
	}
	s.saga.Receipt = receipt
	return nil
}

func (s *RequestPaymentStep) MissingSteps() []string {
	if s.saga.Receipt.Outcome == paymentdomain.OutcomeCompletedDegraded && s.saga.Receipt.MissingStep != "" {
		return []string{s.saga.Receipt.MissingStep}
	}
	return nil
}

// --- PublishConfirmationStep ---

type PublishConfirmationStep struct {
	publisher ports.ConfirmationPublisher
	policy    PublishPolicy
	logger    *slog.Logger
	saga      *OrderSaga
	skipped   bool
}

func (s *PublishConfirmationStep) Name() string { return StepPublishConfirmation }

func (s *PublishConfirmationStep) Execute(ctx context.Context) error {
	err := s.publisher.PublishConfirmation(ctx, domain.Confirmation{
		OrderReference: s.saga.Order.Reference,
		TotalAmount:    s.saga.Order.TotalAmount,
		PaymentMethod:  s.saga.Order.PaymentMethod,
		Customer:       s.saga.Customer,
		Products:       s.saga.Purchased,
	})
	if err == nil {
		return nil
	}
	if s.policy == PublishDegrade {
		s.logger.ErrorContext(ctx, "order confirmation not published",
			"order_reference", s.saga.Order.Reference, "error", err)
		s.skipped = true
		return nil
	}
	return fmt.Errorf("publish order confirmation: %w", err)
}

func (s *PublishConfirmationStep) MissingSteps() []string {
	if s.skipped {
		return []string{StepPublishConfirmation}
	}
	return nil
}
