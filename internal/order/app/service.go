package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/order/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/cache"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/interceptors"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/validation"
)

const (
	OpCreateOrder = "order.createOrder"
	OpFindAll     = "order.findAll"
	OpFindByID    = "order.findById"
	OpFindLines   = "orderLine.findByOrderId"
)

const (
	idempotencyTTL = 24 * time.Hour
	// claimTTL bounds how long a crashed request can hold its key.
	claimTTL = 2 * time.Minute
)

// DefaultStuckAfter is how long a saga may sit inside a step before
// FindStuckSagas reports it.
const DefaultStuckAfter = 5 * time.Minute

type Service struct {
	deps       coordinator.Dependencies
	sagas      sagalog.Repository
	results    cache.Cache
	breakers   *breaker.Registry
	log        *slog.Logger
	stuckAfter time.Duration
}

type Option func(*Service)

func WithStuckAfter(d time.Duration) Option {
	return func(s *Service) { s.stuckAfter = d }
}

func NewService(deps coordinator.Dependencies, sagas sagalog.Repository, results cache.Cache, breakers *breaker.Registry, opts ...Option) *Service {
	s := &Service{
		deps:       deps,
		sagas:      sagas,
		results:    results,
		breakers:   breakers,
		log:        deps.Logger,
		stuckAfter: DefaultStuckAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates req and runs the order saga. A request carrying an
// idempotency key claims it before the saga starts: a repeat of a finished
// request gets the stored result back, and a repeat of one still running is
// rejected.
func (s *Service) CreateOrder(ctx context.Context, req domain.Request) (domain.CreateResult, error) {
	if err := validation.Struct(req); err != nil {
		return domain.CreateResult{}, err
	}
	req = req.WithReference()

	var key string
	if raw := interceptors.IdempotencyKey(ctx); raw != "" {
		key = s.results.GenerateKey(OpCreateOrder, raw)
		res, owned, err := s.claim(ctx, key, raw)
		if err != nil {
			return domain.CreateResult{}, err
		}
		if !owned {
			if res != nil {
				s.log.InfoContext(ctx, "returning stored order result", "order_id", res.OrderID, "saga_id", res.SagaID)
				return *res, nil
			}
			key = ""
		}
	}

	res, err := breaker.Execute(ctx, s.breakers, OpCreateOrder,
		func(ctx context.Context) (domain.CreateResult, error) {
			return s.runSaga(ctx, req)
		},
		func(ctx context.Context, cause error) (domain.CreateResult, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to create order",
				"reference", req.Reference, "customer_id", req.CustomerID, "error", cause)
			return domain.CreateResult{}, apperr.Unavailable(cause, "Service temporarily unavailable. Please try again later.")
		},
	)
	if err != nil {
		if key != "" {
			s.release(ctx, key)
		}
		return domain.CreateResult{}, err
	}

	if key != "" {
		s.storeResult(ctx, key, res)
	}
	return res, nil
}

func (s *Service) runSaga(ctx context.Context, req domain.Request) (domain.CreateResult, error) {
	sagaID := uuid.NewString()
	saga := &coordinator.OrderSaga{Request: req}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.CreateResult{}, apperr.Internal(err, "encode order request")
	}

	orch := coordinator.NewOrchestrator(sagaID, coordinator.OrderSteps(saga, s.deps), s.sagas, s.log,
		coordinator.WithPayload(string(payload)),
		coordinator.WithOrderID(saga.OrderID),
	)
	out, err := orch.Start(ctx)
	if err != nil {
		return domain.CreateResult{}, err
	}

	res := domain.CreateResult{
		OrderID:   saga.Order.ID,
		Reference: saga.Order.Reference,
		SagaID:    sagaID,
		Outcome:   domain.OutcomeCompleted,
	}
	if out.Degraded() {
		res.Outcome = domain.OutcomeCompletedDegraded
		res.MissingSteps = out.MissingSteps
	}
	s.log.InfoContext(ctx, "order created",
		"order_id", res.OrderID, "reference", res.Reference, "outcome", res.Outcome)
	return res, nil
}

// claim reserves key for this request. owned is false with a nil result when
// the cache could not be reached; the saga then runs without idempotency.
func (s *Service) claim(ctx context.Context, key, raw string) (*domain.CreateResult, bool, error) {
	stored, owned, err := cache.Claim(ctx, s.results, key, claimTTL)
	switch {
	case errors.Is(err, cache.ErrInProgress):
		return nil, false, apperr.BusinessRule("Order request with idempotency key %s is already being processed", raw)
	case err != nil:
		s.log.WarnContext(ctx, "idempotency claim failed", "key", key, "error", err)
		return nil, false, nil
	case owned:
		return nil, true, nil
	}

	var res domain.CreateResult
	if err := json.Unmarshal([]byte(stored), &res); err != nil {
		s.log.WarnContext(ctx, "discarding malformed idempotency record", "key", key, "error", err)
		s.release(ctx, key)
		return nil, false, apperr.BusinessRule("Order request with idempotency key %s could not be replayed, retry it", raw)
	}
	return &res, false, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.results.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "idempotency claim release failed", "key", key, "error", err)
	}
}

func (s *Service) storeResult(ctx context.Context, key string, res domain.CreateResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		s.release(ctx, key)
		return
	}
	if err := s.results.Set(ctx, key, string(raw), idempotencyTTL); err != nil {
		s.log.WarnContext(ctx, "idempotency cache write failed", "key", key, "error", err)
	}
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Order, error) {
	return breaker.Execute(ctx, s.breakers, OpFindAll,
		func(ctx context.Context) ([]domain.Order, error) {
			return s.deps.Orders.FindAll(ctx)
		},
		func(ctx context.Context, cause error) ([]domain.Order, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to fetch orders", "error", cause)
			return []domain.Order{}, nil
		},
	)
}

func (s *Service) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	return breaker.Execute(ctx, s.breakers, OpFindByID,
		func(ctx context.Context) (domain.Order, error) {
			return s.deps.Orders.FindByID(ctx, id)
		},
		func(ctx context.Context, cause error) (domain.Order, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to retrieve order", "order_id", id, "error", cause)
			return domain.Order{}, apperr.Unavailable(cause, "Unable to retrieve order. Please try again later.")
		},
	)
}

func (s *Service) FindLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	return breaker.Execute(ctx, s.breakers, OpFindLines,
		func(ctx context.Context) ([]domain.OrderLine, error) {
			return s.deps.Orders.FindLinesByOrderID(ctx, orderID)
		},
		func(ctx context.Context, cause error) ([]domain.OrderLine, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: unable to fetch order lines", "order_id", orderID, "error", cause)
			return []domain.OrderLine{}, nil
		},
	)
}

// FindStuckSagas lists the sagas that stopped after the order was stored but
// before it was paid for: failed ones, and ones idle for longer than the
// stuck-after window. Sagas still waiting on a remote call are not reported.
func (s *Service) FindStuckSagas(ctx context.Context) ([]sagalog.SagaLog, error) {
	return s.sagas.ListStuck(ctx, time.Now().Add(-s.stuckAfter), coordinator.OrderPersistedSteps...)
}
