package app

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/validation"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/product/domain"
)

const (
	OpCreate   = "product.create"
	OpPurchase = "product.purchase"
	OpFindByID = "product.findById"
	OpFindAll  = "product.findAll"
)

type Service struct {
	repo     Repository
	breakers *breaker.Registry
	log      *slog.Logger
}

func NewService(repo Repository, breakers *breaker.Registry, log *slog.Logger) *Service {
	return &Service{repo: repo, breakers: breakers, log: log}
}

func (s *Service) Create(ctx context.Context, p domain.Product) (int64, error) {
	if err := validation.Struct(p); err != nil {
		return 0, err
	}
	return breaker.Execute(ctx, s.breakers, OpCreate,
		func(ctx context.Context) (int64, error) {
			created, err := s.repo.Create(ctx, p)
			if err != nil {
				return 0, err
			}
			s.log.InfoContext(ctx, "product created", "product_id", created.ID, "name", created.Name)
			return created.ID, nil
		},
		func(ctx context.Context, cause error) (int64, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to create product", "error", cause)
			return 0, apperr.Unavailable(cause, "Product service is currently unavailable. Please try again later.")
		},
	)
}

// PurchaseProducts reserves every line or fails the batch. Lines are
// processed in ascending product id order and each decrement is committed
// on its own: when a later line runs out of stock the earlier lines stay
// decremented.
func (s *Service) PurchaseProducts(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	return breaker.Execute(ctx, s.breakers, OpPurchase,
		func(ctx context.Context) ([]domain.PurchaseResult, error) {
			return s.purchase(ctx, lines)
		},
		func(ctx context.Context, cause error) ([]domain.PurchaseResult, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to purchase products",
				"lines", len(lines), "error", cause)
			return nil, apperr.Unavailable(cause, "Purchase service is temporarily unavailable. Please try again later.")
		},
	)
}

func (s *Service) purchase(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	stored, err := s.repo.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(stored) != len(ids) {
		return nil, apperr.BusinessRule("One or more products does not exist")
	}

	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b domain.PurchaseLine) int { return cmp.Compare(a.ProductID, b.ProductID) })

	results := make([]domain.PurchaseResult, 0, len(sorted))
	for i, product := range stored {
		line := sorted[i]
		if product.AvailableQuantity < line.Quantity {
			return nil, outOfStock(product.ID)
		}
		updated, err := s.repo.DecrementStock(ctx, product.ID, line.Quantity)
		if errors.Is(err, domain.ErrInsufficientStock) {
			// Another batch took the stock between the read and the decrement.
			return nil, outOfStock(product.ID)
		}
		if err != nil {
			return nil, err
		}
		s.log.DebugContext(ctx, "stock decremented",
			"product_id", updated.ID, "quantity", line.Quantity, "available", updated.AvailableQuantity)
		results = append(results, domain.NewPurchaseResult(updated, line.Quantity))
	}
	return results, nil
}

func outOfStock(id int64) error {
	return apperr.BusinessRule("Product %d is out of stock", id)
}

// validateLines rejects malformed batches before any stock is read. A batch
// naming the same product twice is rejected because the positional pairing
// with stored products needs distinct ids.
func validateLines(lines []domain.PurchaseLine) error {
	if len(lines) == 0 {
		return apperr.Validation("at least one product is required")
	}
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if err := validation.Struct(l); err != nil {
			return err
		}
		if _, dup := seen[l.ProductID]; dup {
			return apperr.Validation("product %d is listed more than once", l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	return breaker.Execute(ctx, s.breakers, OpFindByID,
		func(ctx context.Context) (domain.Product, error) {
			return s.repo.FindByID(ctx, id)
		},
		func(ctx context.Context, cause error) (domain.Product, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to find product", "product_id", id, "error", cause)
			return domain.Product{}, &apperr.Error{
				Kind:    apperr.KindNotFound,
				Message: "Product service is temporarily unavailable. Please try again later.",
				Err:     cause,
			}
		},
	)
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Product, error) {
	return breaker.Execute(ctx, s.breakers, OpFindAll,
		func(ctx context.Context) ([]domain.Product, error) {
			return s.repo.FindAll(ctx)
		},
		func(ctx context.Context, cause error) ([]domain.Product, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to list products", "error", cause)
			return []domain.Product{}, nil
		},
	)
}
