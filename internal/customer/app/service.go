package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/customer/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/validation"
)

const (
	OpCreate   = "customer.create"
	OpUpdate   = "customer.update"
	OpFindAll  = "customer.findAll"
	OpExists   = "customer.exists"
	OpFindByID = "customer.findById"
	OpDelete   = "customer.delete"
)

const unavailableMsg = "Customer service is currently unavailable. Please try again later."

type Repository interface {
	Save(ctx context.Context, c domain.Customer) error
	FindByID(ctx context.Context, id string) (domain.Customer, error)
	FindAll(ctx context.Context) ([]domain.Customer, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo     Repository
	breakers *breaker.Registry
	log      *slog.Logger
}

func NewService(repo Repository, breakers *breaker.Registry, log *slog.Logger) *Service {
	return &Service{repo: repo, breakers: breakers, log: log}
}

// unavailable is the fallback shared by every write and by FindByID.
func unavailable[T any](s *Service, action string) breaker.Fallback[T] {
	return func(ctx context.Context, cause error) (T, error) {
		s.log.ErrorContext(ctx, "circuit breaker fallback: unable to "+action, "error", cause)
		var zero T
		return zero, apperr.Unavailable(cause, unavailableMsg)
	}
}

func (s *Service) Create(ctx context.Context, c domain.Customer) (string, error) {
	if err := validation.Struct(c); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return breaker.Execute(ctx, s.breakers, OpCreate,
		func(ctx context.Context) (string, error) {
			if err := s.repo.Save(ctx, c); err != nil {
				return "", err
			}
			return c.ID, nil
		},
		unavailable[string](s, "create customer"),
	)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	_, err := breaker.Execute(ctx, s.breakers, OpUpdate,
		func(ctx context.Context) (struct{}, error) {
			c, err := s.repo.FindByID(ctx, req.ID)
			if err != nil {
				return struct{}{}, err
			}
			c.Merge(req)
			return struct{}{}, s.repo.Save(ctx, c)
		},
		unavailable[struct{}](s, "update customer"),
	)
	return err
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Customer, error) {
	return breaker.Execute(ctx, s.breakers, OpFindAll,
		func(ctx context.Context) ([]domain.Customer, error) {
			return s.repo.FindAll(ctx)
		},
		func(ctx context.Context, cause error) ([]domain.Customer, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to fetch customers", "error", cause)
			return []domain.Customer{}, nil
		},
	)
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return breaker.Execute(ctx, s.breakers, OpExists,
		func(ctx context.Context) (bool, error) {
			return s.repo.Exists(ctx, id)
		},
		func(ctx context.Context, cause error) (bool, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to check customer existence",
				"customer_id", id, "error", cause)
			return false, nil
		},
	)
}

func (s *Service) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	return breaker.Execute(ctx, s.breakers, OpFindByID,
		func(ctx context.Context) (domain.Customer, error) {
			return s.repo.FindByID(ctx, id)
		},
		unavailable[domain.Customer](s, "find customer"),
	)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := breaker.Execute(ctx, s.breakers, OpDelete,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.repo.Delete(ctx, id)
		},
		unavailable[struct{}](s, "delete customer"),
	)
	return err
}
