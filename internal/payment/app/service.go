package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/breaker"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/cache"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/validation"
)

const OpCreate = "payment.create"

const (
	receiptTTL = 24 * time.Hour
	claimTTL   = 2 * time.Minute
)

type Repository interface {
	// Save stores p and returns it with its assigned id.
	Save(ctx context.Context, p domain.Payment) (domain.Payment, error)
	FindByID(ctx context.Context, id int64) (domain.Payment, error)
}

// Notifier delivers the payment notification. One attempt, no retries.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	cache    cache.Cache
	breakers *breaker.Registry
	log      *slog.Logger
}

func NewService(repo Repository, notifier Notifier, c cache.Cache, breakers *breaker.Registry, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, cache: c, breakers: breakers, log: log}
}

// Create stores the payment and sends its notification. When the breaker
// rejects the call or the action fails, the payment is still stored and the
// receipt reports the notification as missing.
func (s *Service) Create(ctx context.Context, req domain.Request) (domain.Receipt, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Receipt{}, err
	}

	key := s.cache.GenerateKey(OpCreate, req.OrderReference)
	r, owned, err := s.claim(ctx, key, req.OrderReference)
	if err != nil {
		return domain.Receipt{}, err
	}
	if r != nil {
		s.log.InfoContext(ctx, "payment already recorded for order",
			"order_reference", req.OrderReference, "payment_id", r.PaymentID)
		return *r, nil
	}

	// Set by the action once the row exists so the fallback does not store
	// the same payment twice.
	var saved *domain.Payment

	receipt, err := breaker.Execute(ctx, s.breakers, OpCreate,
		func(ctx context.Context) (domain.Receipt, error) {
			p, err := s.repo.Save(ctx, domain.NewPayment(req))
			if err != nil {
				return domain.Receipt{}, fmt.Errorf("save payment: %w", err)
			}
			saved = &p
			if err := s.notifier.Notify(ctx, domain.NewNotification(req)); err != nil {
				return domain.Receipt{}, fmt.Errorf("send payment notification: %w", err)
			}
			s.log.InfoContext(ctx, "payment created",
				"payment_id", p.ID, "order_reference", req.OrderReference)
			return domain.Receipt{PaymentID: p.ID, Outcome: domain.OutcomeCompleted}, nil
		},
		func(ctx context.Context, cause error) (domain.Receipt, error) {
			s.log.ErrorContext(ctx, "circuit breaker fallback: saving payment without notification",
				"order_reference", req.OrderReference, "error", cause)
			p := saved
			if p == nil {
				stored, err := s.repo.Save(ctx, domain.NewPayment(req))
				if err != nil {
					return domain.Receipt{}, apperr.Unavailable(err,
						"Payment service is currently unavailable. Please try again later.")
				}
				p = &stored
			}
			return domain.Receipt{
				PaymentID:   p.ID,
				Outcome:     domain.OutcomeCompletedDegraded,
				MissingStep: domain.StepNotification,
			}, nil
		},
	)
	if err != nil {
		if owned {
			s.release(ctx, key)
		}
		return domain.Receipt{}, err
	}

	if owned {
		s.storeReceipt(ctx, key, receipt)
	}
	return receipt, nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (domain.Payment, error) {
	return s.repo.FindByID(ctx, id)
}

// claim reserves the order reference for this call. A nil receipt with owned
// false means the cache was unreachable and the payment proceeds unguarded.
func (s *Service) claim(ctx context.Context, key, reference string) (*domain.Receipt, bool, error) {
	stored, owned, err := cache.Claim(ctx, s.cache, key, claimTTL)
	switch {
	case errors.Is(err, cache.ErrInProgress):
		return nil, false, apperr.BusinessRule("Payment for order %s is already being processed", reference)
	case err != nil:
		s.log.WarnContext(ctx, "payment receipt claim failed", "key", key, "error", err)
		return nil, false, nil
	case owned:
		return nil, true, nil
	}

	var r domain.Receipt
	if err := json.Unmarshal([]byte(stored), &r); err != nil {
		s.log.WarnContext(ctx, "discarding malformed payment receipt", "key", key, "error", err)
		s.release(ctx, key)
		return nil, false, apperr.BusinessRule("Payment for order %s could not be replayed, retry it", reference)
	}
	return &r, false, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "payment receipt claim release failed", "key", key, "error", err)
	}
}

func (s *Service) storeReceipt(ctx context.Context, key string, r domain.Receipt) {
	raw, err := json.Marshal(r)
	if err != nil {
		s.release(ctx, key)
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), receiptTTL); err != nil {
		s.log.WarnContext(ctx, "payment receipt cache write failed", "key", key, "error", err)
	}
}
