package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	paymentdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	productdomain "github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

type Outcome string

const (
	OutcomeCompleted         Outcome = "COMPLETED"
	OutcomeCompletedDegraded Outcome = "COMPLETED_DEGRADED"
)

// Request is the immutable input of one order creation.
type Request struct {
	Reference     string                       `json:"reference"`
	Amount        decimal.Decimal              `json:"amount" validate:"gt=0"`
	PaymentMethod paymentdomain.Method         `json:"paymentMethod" validate:"required,oneof=PAYPAL CREDIT_CARD VISA MASTER_CARD BITCOIN"`
	CustomerID    string                       `json:"customerId" validate:"required"`
	Products      []productdomain.PurchaseLine `json:"products" validate:"min=1,dive"`
}

// WithReference returns r with a generated reference when none was given.
func (r Request) WithReference() Request {
	if r.Reference == "" {
		r.Reference = "ORD-" + uuid.NewString()
	}
	return r
}

type Order struct {
	ID               int64                `json:"id"`
	Reference        string               `json:"reference"`
	TotalAmount      decimal.Decimal      `json:"amount"`
	PaymentMethod    paymentdomain.Method `json:"paymentMethod"`
	CustomerID       string               `json:"customerId"`
	CreatedDate      time.Time            `json:"createdDate"`
	LastModifiedDate time.Time            `json:"lastModifiedDate"`
}

func NewOrder(r Request) Order {
	return Order{
		Reference:     r.Reference,
		TotalAmount:   r.Amount,
		PaymentMethod: r.PaymentMethod,
		CustomerID:    r.CustomerID,
	}
}

type OrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"orderId"`
	ProductID int64   `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// Customer is the order side view of a customer record.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// Confirmation is published once the order is paid for.
type Confirmation struct {
	OrderReference string                         `json:"orderReference"`
	TotalAmount    decimal.Decimal                `json:"totalAmount"`
	PaymentMethod  paymentdomain.Method           `json:"paymentMethod"`
	Customer       Customer                       `json:"customer"`
	Products       []productdomain.PurchaseResult `json:"products"`
}

type CreateResult struct {
	OrderID      int64    `json:"orderId"`
	Reference    string   `json:"reference"`
	SagaID       string   `json:"sagaId"`
	Outcome      Outcome  `json:"outcome"`
	MissingSteps []string `json:"missingSteps,omitempty"`
}
