package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned by repositories when a conditional
// decrement finds less stock than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name" validate:"required"`
	Description       string          `json:"description" validate:"required"`
	AvailableQuantity float64         `json:"availableQuantity" validate:"gte=0"`
	Price             decimal.Decimal `json:"price" validate:"gt=0"`
	CategoryID        int64           `json:"categoryId" validate:"gt=0"`
	CategoryName      string          `json:"categoryName,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PurchaseLine asks for quantity units of one product.
type PurchaseLine struct {
	ProductID int64   `json:"productId" validate:"gt=0"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

// PurchaseResult describes one reserved line. Quantity is the amount taken,
// not the stock left.
type PurchaseResult struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    float64         `json:"quantity"`
}

func NewPurchaseResult(p Product, quantity float64) PurchaseResult {
	return PurchaseResult{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    quantity,
	}
}
