package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/payment/domain"
	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/pkg/apperr"
)

type Memory struct {
	payments *xsync.MapOf[int64, domain.Payment]
	nextID   atomic.Int64
}

func NewMemory() *Memory {
	return &Memory{payments: xsync.NewMapOf[int64, domain.Payment]()}
}

func (m *Memory) Save(_ context.Context, p domain.Payment) (domain.Payment, error) {
	if p.ID == 0 {
		p.ID = m.nextID.Add(1)
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now().UTC()
	}
	m.payments.Store(p.ID, p)
	return p, nil
}

func (m *Memory) FindByID(_ context.Context, id int64) (domain.Payment, error) {
	p, ok := m.payments.Load(id)
	if !ok {
		return domain.Payment{}, apperr.NotFound("Payment with id %d not found", id)
	}
	return p, nil
}

// Count returns the number of stored payments.
func (m *Memory) Count() int {
	return m.payments.Size()
}
