package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodPaypal     Method = "PAYPAL"
	MethodCreditCard Method = "CREDIT_CARD"
	MethodVisa       Method = "VISA"
	MethodMasterCard Method = "MASTER_CARD"
	MethodBitcoin    Method = "BITCOIN"
)

// Outcome tells the caller whether every side effect of a payment happened.
type Outcome string

const (
	OutcomeCompleted         Outcome = "COMPLETED"
	OutcomeCompletedDegraded Outcome = "COMPLETED_DEGRADED"
)

// StepNotification names the side effect skipped by a degraded payment.
const StepNotification = "payment_notification"

type Customer struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type Request struct {
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod  Method          `json:"paymentMethod" validate:"required,oneof=PAYPAL CREDIT_CARD VISA MASTER_CARD BITCOIN"`
	OrderID        int64           `json:"orderId" validate:"gt=0"`
	OrderReference string          `json:"orderReference" validate:"required"`
	Customer       Customer        `json:"customer"`
}

type Payment struct {
	ID             int64           `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  Method          `json:"paymentMethod"`
	OrderID        int64           `json:"orderId"`
	OrderReference string          `json:"orderReference"`
	CreatedDate    time.Time       `json:"createdDate"`
}

func NewPayment(req Request) Payment {
	return Payment{
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		OrderID:        req.OrderID,
		OrderReference: req.OrderReference,
	}
}

// Notification is published once a payment is stored.
type Notification struct {
	OrderReference    string          `json:"orderReference"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     Method          `json:"paymentMethod"`
	CustomerFirstname string          `json:"customerFirstname"`
	CustomerLastname  string          `json:"customerLastname"`
	CustomerEmail     string          `json:"customerEmail"`
}

func NewNotification(req Request) Notification {
	return Notification{
		OrderReference:    req.OrderReference,
		Amount:            req.Amount,
		PaymentMethod:     req.PaymentMethod,
		CustomerFirstname: req.Customer.FirstName,
		CustomerLastname:  req.Customer.LastName,
		CustomerEmail:     req.Customer.Email,
	}
}

type Receipt struct {
	PaymentID   int64   `json:"paymentId"`
	Outcome     Outcome `json:"outcome"`
	MissingStep string  `json:"missingStep,omitempty"`
}
